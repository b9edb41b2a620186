package implementation

import (
	contextpkg "context"

	"github.com/sourcegraph/jsonrpc2"
)

// Client is the editor end of the connection. Background work outlives the
// request that started it, so it talks to the client through this instead of
// the request context.
type Client interface {
	Notify(method string, params interface{})
	Call(context contextpkg.Context, method string, params interface{}, result interface{}) error
}

// connectionClient sends to the client over a JSON-RPC connection.
type connectionClient struct {
	connection *jsonrpc2.Conn
	context    contextpkg.Context
}

func (self connectionClient) Notify(method string, params interface{}) {
	if err := self.connection.Notify(self.context, method, params); err != nil {
		log.Errorf("%s notification: %s", method, err.Error())
	}
}

func (self connectionClient) Call(context contextpkg.Context, method string, params interface{}, result interface{}) error {
	return self.connection.Call(context, method, params, result)
}
