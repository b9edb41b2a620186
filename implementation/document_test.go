package implementation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tminor/tags-lsp/config"
)

func TestRangeToIndex(t *testing.T) {
	content := "ab\ncde\n\nf"
	at := func(line protocol.UInteger, character protocol.UInteger) protocol.Position {
		return protocol.Position{Line: line, Character: character}
	}

	tests := []struct {
		name       string
		start, end protocol.Position
		from, to   int
	}{
		{"start", at(0, 0), at(0, 0), 0, 0},
		{"within line", at(1, 1), at(1, 3), 4, 6},
		{"across lines", at(0, 1), at(1, 2), 1, 5},
		{"empty line", at(2, 0), at(2, 0), 7, 7},
		{"past end of line", at(0, 10), at(1, 0), 2, 3},
		{"last line", at(3, 0), at(3, 1), 8, 9},
		{"past end of document", at(3, 5), at(9, 0), 9, 9},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			from, to := rangeToIndex(content, &protocol.Range{Start: test.start, End: test.end})
			assert.Equal(t, test.from, from)
			assert.Equal(t, test.to, to)
		})
	}
}

func TestRangeToIndexCountsUTF16Units(t *testing.T) {
	content := "x😀y\n"
	from, to := rangeToIndex(content, &protocol.Range{
		Start: protocol.Position{Line: 0, Character: 3},
		End:   protocol.Position{Line: 0, Character: 4},
	})
	assert.Equal(t, 5, from)
	assert.Equal(t, 6, to)
	assert.Equal(t, "y", content[from:to])
}

func TestStateChangeFolders(t *testing.T) {
	state := NewState(config.Default())
	state.initialize([]protocol.WorkspaceFolder{
		{URI: "file:///a", Name: "a"},
		{URI: "file:///b", Name: "b"},
		{URI: "file:///a2", Name: "a"},
	}, false)

	state.changeFolders([]protocol.WorkspaceFolder{{URI: "file:///c", Name: "c"}}, []protocol.WorkspaceFolder{{Name: "a"}})
	assert.Equal(t, []protocol.WorkspaceFolder{
		{URI: "file:///b", Name: "b"},
		{URI: "file:///c", Name: "c"},
	}, state.Folders())

	folders := state.Folders()
	folders[0].Name = "changed"
	assert.Equal(t, "b", state.Folders()[0].Name)
}
