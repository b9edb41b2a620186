package implementation

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// protocol.TextDocumentDidOpenFunc signature
func (self *Server) TextDocumentDidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	self.state.setDocument(params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

// protocol.TextDocumentDidChangeFunc signature
func (self *Server) TextDocumentDidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	content, _ := self.state.DocumentText(params.TextDocument.URI)
	for _, change := range params.ContentChanges {
		if change_, ok := change.(protocol.TextDocumentContentChangeEvent); ok {
			if (change_.RangeLength == nil) && (change_.Range == protocol.Range{}) {
				// Full sync events without a range decode into this type too.
				content = change_.Text
				continue
			}
			startIndex, endIndex := rangeToIndex(content, &change_.Range)
			content = content[:startIndex] + change_.Text + content[endIndex:]
		} else if change_, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			content = change_.Text
		}
	}
	self.state.setDocument(params.TextDocument.URI, content)
	return nil
}

// protocol.TextDocumentDidSaveFunc signature
func (self *Server) TextDocumentDidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		self.state.setDocument(params.TextDocument.URI, *params.Text)
	}

	folder, err := self.folderOf(params.TextDocument.URI)
	if err != nil {
		log.Debugf("not re-indexing: %s", err.Error())
		return nil
	}
	self.schedule(folder)
	return nil
}

// protocol.TextDocumentDidCloseFunc signature
func (self *Server) TextDocumentDidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	self.state.deleteDocument(params.TextDocument.URI)
	return nil
}
