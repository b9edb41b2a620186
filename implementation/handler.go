package implementation

import (
	"encoding/json"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (self *Server) newHandler() protocol.Handler {
	return protocol.Handler{
		Initialize:  self.Initialize,
		Initialized: self.Initialized,
		Shutdown:    self.Shutdown,
		Exit:        self.Exit,
		SetTrace:    self.SetTrace,

		TextDocumentDidOpen:   self.TextDocumentDidOpen,
		TextDocumentDidChange: self.TextDocumentDidChange,
		TextDocumentDidSave:   self.TextDocumentDidSave,
		TextDocumentDidClose:  self.TextDocumentDidClose,

		TextDocumentDefinition:     self.TextDocumentDefinition,
		TextDocumentDeclaration:    self.TextDocumentDeclaration,
		TextDocumentTypeDefinition: self.TextDocumentTypeDefinition,
		TextDocumentImplementation: self.TextDocumentImplementation,
		TextDocumentReferences:     self.TextDocumentReferences,
		TextDocumentDocumentSymbol: self.TextDocumentDocumentSymbol,
		TextDocumentCompletion:     self.TextDocumentCompletion,
		TextDocumentRename:         self.TextDocumentRename,

		WorkspaceSymbol:                    self.WorkspaceSymbol,
		WorkspaceDidChangeWorkspaceFolders: self.WorkspaceDidChangeWorkspaceFolders,
	}
}

// Handle implements glsp.Handler. Apart from the lifecycle messages nothing is
// served before a successful initialize or after shutdown.
func (self *Server) Handle(context *glsp.Context) (r interface{}, validMethod bool, validParams bool, err error) {
	switch context.Method {
	case protocol.MethodInitialize, protocol.MethodShutdown, protocol.MethodExit, protocol.MethodSetTrace:
	default:
		if err := self.state.checkReady(); err != nil {
			return nil, true, true, err
		}
	}

	// protocol.Handler types the prepareRename result as a workspace edit.
	if context.Method == protocol.MethodTextDocumentPrepareRename {
		var params protocol.PrepareRenameParams
		if err := json.Unmarshal(context.Params, &params); err != nil {
			return nil, true, false, err
		}
		r, err = self.TextDocumentPrepareRename(context, &params)
		return r, true, true, err
	}

	return self.handler.Handle(context)
}
