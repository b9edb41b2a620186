package implementation

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/tags-lsp/tags"
)

// documentStore holds opened documents. It is owned by State and guarded by
// its lock.
type documentStore struct {
	documents map[protocol.DocumentUri]*document
}

// document is the full text of an open editor buffer.
type document struct {
	URI     protocol.DocumentUri
	Content string
}

func newDocumentStore() documentStore {
	return documentStore{documents: make(map[protocol.DocumentUri]*document)}
}

func (self *documentStore) set(uri protocol.DocumentUri, content string) {
	self.documents[uri] = &document{URI: uri, Content: content}
}

func (self *documentStore) get(uri protocol.DocumentUri) (string, bool) {
	if document, ok := self.documents[uri]; ok {
		return document.Content, true
	}
	return "", false
}

func (self *documentStore) delete(uri protocol.DocumentUri) {
	delete(self.documents, uri)
}

// rangeToIndex converts a range into byte offsets into content. Positions past
// the end of a line or of the document are clamped.
func rangeToIndex(content string, range_ *protocol.Range) (int, int) {
	return positionToIndex(content, range_.Start), positionToIndex(content, range_.End)
}

func positionToIndex(content string, position protocol.Position) int {
	index := 0
	for line := protocol.UInteger(0); line < position.Line; line++ {
		next := strings.IndexByte(content[index:], '\n')
		if next < 0 {
			return len(content)
		}
		index += next + 1
	}

	end := strings.IndexByte(content[index:], '\n')
	if end < 0 {
		end = len(content) - index
	}
	if character := tags.ByteColumn(content[index:index+end], int(position.Character)); character < end {
		return index + character
	}
	return index + end
}
