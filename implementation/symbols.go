package implementation

import (
	contextpkg "context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/tags-lsp/tags"
)

const (
	// WorkspaceSymbolLimit caps a workspace symbol search answered in one batch.
	WorkspaceSymbolLimit = 99
	// WorkspaceSymbolChunk is the number of symbols per partial result.
	WorkspaceSymbolChunk = 16
)

// protocol.WorkspaceSymbolFunc signature
func (self *Server) WorkspaceSymbol(context *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	query := params.Query
	if query == "" {
		query = "."
	}
	folders := self.state.Folders()

	if params.PartialResultToken == nil {
		context_, cancel := self.requestContext()
		defer cancel()

		symbols, err := self.searchSymbols(context_, folders, query)
		if err != nil {
			return nil, fail("workspace/symbol", err)
		}
		return symbols, nil
	}

	stream := newSymbolStream(context.Notify, *params.PartialResultToken, WorkspaceSymbolChunk)
	self.streams.Add(1)
	go func() {
		defer self.streams.Done()
		if err := self.streamSymbols(self.context, folders, query, stream); err != nil {
			fail("workspace/symbol", err)
		}
	}()

	return []protocol.SymbolInformation{}, nil
}

// searchSymbols scans folders in registration order and stops once the limit
// is reached.
func (self *Server) searchSymbols(context contextpkg.Context, folders []protocol.WorkspaceFolder, query string) ([]protocol.SymbolInformation, error) {
	symbols := make([]protocol.SymbolInformation, 0)
	for _, folder := range folders {
		err := self.index.Scan(context, folder.URI, tags.DefinitionArgs(query), func(hit tags.Hit) bool {
			symbols = append(symbols, hit.SymbolInformation())
			return len(symbols) < WorkspaceSymbolLimit
		})
		if err != nil {
			return nil, err
		}
		if len(symbols) >= WorkspaceSymbolLimit {
			break
		}
	}
	return symbols, nil
}

// streamSymbols scans every folder without a limit and delivers the symbols
// through stream.
func (self *Server) streamSymbols(context contextpkg.Context, folders []protocol.WorkspaceFolder, query string, stream *symbolStream) error {
	defer stream.flush()
	for _, folder := range folders {
		err := self.index.Scan(context, folder.URI, tags.DefinitionArgs(query), func(hit tags.Hit) bool {
			stream.add(hit.SymbolInformation())
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

//
// symbolStream
//

// symbolStream batches symbols into partial results sent as $/progress
// notifications. An empty batch is never sent.
type symbolStream struct {
	notify glsp.NotifyFunc
	token  protocol.ProgressToken
	size   int
	chunk  []protocol.SymbolInformation
}

func newSymbolStream(notify glsp.NotifyFunc, token protocol.ProgressToken, size int) *symbolStream {
	return &symbolStream{
		notify: notify,
		token:  token,
		size:   size,
		chunk:  make([]protocol.SymbolInformation, 0, size),
	}
}

func (self *symbolStream) add(symbol protocol.SymbolInformation) {
	self.chunk = append(self.chunk, symbol)
	if len(self.chunk) >= self.size {
		self.flush()
	}
}

func (self *symbolStream) flush() {
	if len(self.chunk) == 0 {
		return
	}
	self.notify(methodProgress, &protocol.ProgressParams{Token: self.token, Value: self.chunk})
	self.chunk = make([]protocol.SymbolInformation, 0, self.size)
}
