package implementation

import (
	contextpkg "context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/tags-lsp/tags"
)

// Connection is the jsonrpc2.Handler for one client. Notifications are handled
// in the order they arrive, each request runs on its own goroutine.
type Connection struct {
	server   *Server
	requests sync.WaitGroup
}

func NewConnection(server *Server) *Connection {
	return &Connection{server: server}
}

// Serve handles the client on stream until it disconnects.
func (self *Connection) Serve(context contextpkg.Context, stream io.ReadWriteCloser, debug bool) {
	var options []jsonrpc2.ConnOpt
	if debug {
		options = append(options, jsonrpc2.LogMessages(messageLogger{}))
	}
	connection := jsonrpc2.NewConn(context, jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}), self, options...)
	<-connection.DisconnectNotify()
	self.requests.Wait()
}

// jsonrpc2.Handler interface
func (self *Connection) Handle(context contextpkg.Context, connection *jsonrpc2.Conn, request *jsonrpc2.Request) {
	client := connectionClient{connection: connection, context: context}
	self.server.Connect(client)

	switch {
	case request.Method == protocol.MethodExit:
		self.handle(context, connection, client, request)
		connection.Close()

	case request.Notif:
		self.handle(context, connection, client, request)

	default:
		self.requests.Add(1)
		go func() {
			defer self.requests.Done()
			self.handle(context, connection, client, request)
		}()
	}
}

func (self *Connection) handle(context contextpkg.Context, connection *jsonrpc2.Conn, client Client, request *jsonrpc2.Request) {
	glspContext := glsp.Context{
		Method: request.Method,
		Notify: client.Notify,
	}
	if request.Params != nil {
		glspContext.Params = *request.Params
	}

	result, validMethod, validParams, err := self.server.Handle(&glspContext)

	if request.Notif {
		if !validMethod && strings.HasPrefix(request.Method, "$/") {
			return
		}
		if respErr := responseError(request.Method, validMethod, validParams, err); respErr != nil {
			log.Warningf("notification %s: %s", request.Method, respErr.Message)
		}
		return
	}

	if respErr := responseError(request.Method, validMethod, validParams, err); respErr != nil {
		err = connection.ReplyWithError(context, request.ID, respErr)
	} else {
		err = connection.Reply(context, request.ID, result)
	}
	if err != nil {
		log.Errorf("replying to %s: %s", request.Method, err.Error())
	}
}

// responseError converts the outcome of a handler into a JSON-RPC error.
// Failures of the query path keep their code and diagnostic data.
func responseError(method string, validMethod bool, validParams bool, err error) *jsonrpc2.Error {
	if !validMethod {
		return &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not supported: %s", method),
		}
	}

	if !validParams {
		respErr := &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
		if err != nil {
			respErr.Message = err.Error()
		}
		return respErr
	}

	if err == nil {
		return nil
	}

	var e *tags.Error
	if errors.As(err, &e) {
		respErr := &jsonrpc2.Error{Code: int64(e.RPCCode()), Message: e.Message}
		respErr.SetError(e.Details())
		return respErr
	}

	return &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
}

// messageLogger traces every message at debug level.
type messageLogger struct{}

// jsonrpc2.Logger interface
func (messageLogger) Printf(format string, v ...interface{}) {
	log.Debugf(strings.TrimSuffix(format, "\n"), v...)
}
