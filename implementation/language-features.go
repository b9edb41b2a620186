package implementation

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/tags-lsp/tags"
)

// CompletionLimit caps the number of completion items returned.
const CompletionLimit = 16

func (self *Server) definitions(method string, params *protocol.TextDocumentPositionParams) (interface{}, error) {
	folder, symbol, err := self.symbolAt(params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, fail(method, err)
	}

	context, cancel := self.requestContext()
	defer cancel()

	locations, err := self.index.Definitions(context, folder.URI, symbol)
	if err != nil {
		return nil, fail(method, err)
	}
	return locations, nil
}

// protocol.TextDocumentDefinitionFunc signature
func (self *Server) TextDocumentDefinition(context *glsp.Context, params *protocol.DefinitionParams) (interface{}, error) {
	return self.definitions("textDocument/definition", &params.TextDocumentPositionParams)
}

// protocol.TextDocumentDeclarationFunc signature
func (self *Server) TextDocumentDeclaration(context *glsp.Context, params *protocol.DeclarationParams) (interface{}, error) {
	return self.definitions("textDocument/declaration", &params.TextDocumentPositionParams)
}

// protocol.TextDocumentTypeDefinitionFunc signature
func (self *Server) TextDocumentTypeDefinition(context *glsp.Context, params *protocol.TypeDefinitionParams) (interface{}, error) {
	return self.definitions("textDocument/typeDefinition", &params.TextDocumentPositionParams)
}

// protocol.TextDocumentImplementationFunc signature
func (self *Server) TextDocumentImplementation(context *glsp.Context, params *protocol.ImplementationParams) (interface{}, error) {
	return self.definitions("textDocument/implementation", &params.TextDocumentPositionParams)
}

// protocol.TextDocumentReferencesFunc signature
func (self *Server) TextDocumentReferences(context *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	folder, symbol, err := self.symbolAt(params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, fail("textDocument/references", err)
	}

	context_, cancel := self.requestContext()
	defer cancel()

	locations, err := self.index.References(context_, folder.URI, symbol)
	if err != nil {
		return nil, fail("textDocument/references", err)
	}
	return locations, nil
}

// protocol.TextDocumentDocumentSymbolFunc signature
func (self *Server) TextDocumentDocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (interface{}, error) {
	folder, err := self.folderOf(params.TextDocument.URI)
	if err != nil {
		return nil, fail("textDocument/documentSymbol", err)
	}
	path, err := tags.URIPath(params.TextDocument.URI)
	if err != nil {
		return nil, fail("textDocument/documentSymbol", err)
	}

	context_, cancel := self.requestContext()
	defer cancel()

	symbols, err := self.index.FileSymbols(context_, folder.URI, path)
	if err != nil {
		return nil, fail("textDocument/documentSymbol", err)
	}
	return symbols, nil
}

// protocol.TextDocumentCompletionFunc signature
func (self *Server) TextDocumentCompletion(context *glsp.Context, params *protocol.CompletionParams) (interface{}, error) {
	items := make([]protocol.CompletionItem, 0)

	folder, prefix, err := self.symbolAt(params.TextDocument.URI, params.Position)
	if err != nil {
		if tags.IsCode(err, tags.NoSymbolAtPosition) {
			return items, nil
		}
		return nil, fail("textDocument/completion", err)
	}

	context_, cancel := self.requestContext()
	defer cancel()

	names, err := self.index.Completions(context_, folder.URI, prefix, CompletionLimit)
	if err != nil {
		return nil, fail("textDocument/completion", err)
	}

	kind := protocol.CompletionItemKindText
	for _, name := range names {
		items = append(items, protocol.CompletionItem{
			Label: name,
			Kind:  &kind,
		})
	}
	return items, nil
}

// protocol.TextDocumentPrepareRenameFunc signature
func (self *Server) TextDocumentPrepareRename(context *glsp.Context, params *protocol.PrepareRenameParams) (interface{}, error) {
	if _, err := self.folderOf(params.TextDocument.URI); err != nil {
		return nil, fail("textDocument/prepareRename", err)
	}
	lines, err := self.files.Lines(params.TextDocument.URI)
	if err != nil {
		return nil, fail("textDocument/prepareRename", err)
	}

	line := int(params.Position.Line)
	if line >= len(lines) {
		return nil, nil
	}
	text := lines[line]
	start, end, ok := tags.SymbolRangeAt(text, tags.ByteColumn(text, int(params.Position.Character)))
	if !ok {
		return nil, nil
	}

	return protocol.Range{
		Start: protocol.Position{Line: params.Position.Line, Character: protocol.UInteger(tags.UTF16Column(text, start))},
		End:   protocol.Position{Line: params.Position.Line, Character: protocol.UInteger(tags.UTF16Column(text, end))},
	}, nil
}

// protocol.TextDocumentRenameFunc signature
func (self *Server) TextDocumentRename(context *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	if !tags.IsSymbol(params.NewName) {
		return nil, fail("textDocument/rename", tags.NewError(tags.InvalidRename, "new name is not an identifier", map[string]interface{}{
			"new_name": params.NewName,
		}, nil))
	}

	folder, symbol, err := self.symbolAt(params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, fail("textDocument/rename", err)
	}

	context_, cancel := self.requestContext()
	defer cancel()

	locations, err := self.index.Occurrences(context_, folder.URI, symbol)
	if err != nil {
		return nil, fail("textDocument/rename", err)
	}

	return &protocol.WorkspaceEdit{Changes: renameEdits(locations, params.NewName)}, nil
}

// renameEdits groups locations per document, dropping duplicates and ordering
// the edits of each document by position.
func renameEdits(locations []protocol.Location, newName string) map[protocol.DocumentUri][]protocol.TextEdit {
	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	seen := make(map[protocol.Location]struct{})
	for _, location := range locations {
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		changes[location.URI] = append(changes[location.URI], protocol.TextEdit{
			Range:   location.Range,
			NewText: newName,
		})
	}

	for _, edits := range changes {
		sort.Slice(edits, func(i int, j int) bool {
			a, b := edits[i].Range.Start, edits[j].Range.Start
			if a.Line != b.Line {
				return a.Line < b.Line
			}
			return a.Character < b.Character
		})
	}
	return changes
}
