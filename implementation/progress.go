package implementation

import (
	contextpkg "context"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	methodProgress               = "$/progress"
	methodWorkDoneProgressCreate = "window/workDoneProgress/create"
)

// progress sends work done progress for one token. When the client did not
// announce window.workDoneProgress, or refused the token, nothing is sent.
type progress struct {
	client  Client
	enabled bool
	token   protocol.ProgressToken
}

func newProgress(client Client, enabled bool, token string) *progress {
	return &progress{
		client:  client,
		enabled: enabled && (client != nil),
		token:   protocol.ProgressToken{Value: token},
	}
}

func (self *progress) create(context contextpkg.Context) {
	if !self.enabled {
		return
	}
	var result interface{}
	if err := self.client.Call(context, methodWorkDoneProgressCreate, &protocol.WorkDoneProgressCreateParams{Token: self.token}, &result); err != nil {
		log.Warningf("progress token refused: %s", err.Error())
		self.enabled = false
	}
}

func (self *progress) begin(title string, message string) {
	cancellable := false
	percentage := protocol.UInteger(0)
	self.send(&protocol.WorkDoneProgressBegin{
		Kind:        "begin",
		Title:       title,
		Cancellable: &cancellable,
		Message:     &message,
		Percentage:  &percentage,
	})
}

func (self *progress) report(message string, percentage int) {
	cancellable := false
	percentage_ := protocol.UInteger(percentage)
	self.send(&protocol.WorkDoneProgressReport{
		Kind:        "report",
		Cancellable: &cancellable,
		Message:     &message,
		Percentage:  &percentage_,
	})
}

func (self *progress) end() {
	self.send(&protocol.WorkDoneProgressEnd{Kind: "end"})
}

func (self *progress) send(value interface{}) {
	if !self.enabled {
		return
	}
	self.client.Notify(methodProgress, &protocol.ProgressParams{Token: self.token, Value: value})
}
