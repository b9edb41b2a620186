package tags

import (
	"strings"
	"unicode/utf16"

	"github.com/spf13/afero"
)

// SplitLines splits content on "\n", dropping a trailing "\r" from each line.
// A trailing newline does not produce an empty final line.
func SplitLines(content string) []string {
	if content == "" {
		return []string{}
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for index, line := range lines {
		lines[index] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ByteColumn converts a column counted in UTF-16 code units, as sent by the
// client, into a byte offset into line. Columns past the end of the line stay
// past it by the same amount.
func ByteColumn(line string, column int) int {
	units := 0
	for index, r := range line {
		if units >= column {
			return index
		}
		units += utf16.RuneLen(r)
	}
	return len(line) + column - units
}

// UTF16Column converts a byte offset into line into UTF-16 code units.
func UTF16Column(line string, column int) int {
	if column > len(line) {
		column = len(line)
	}
	units := 0
	for _, r := range line[:column] {
		units += utf16.RuneLen(r)
	}
	return units
}

// DocumentSource gives access to the text of documents open in the editor.
type DocumentSource interface {
	DocumentText(uri string) (string, bool)
}

// FileReader reads source files as lines, preferring open editor buffers when
// a DocumentSource is attached.
type FileReader struct {
	fs        afero.Fs
	documents DocumentSource
}

func NewFileReader(fs afero.Fs, documents DocumentSource) *FileReader {
	return &FileReader{fs: fs, documents: documents}
}

// DiskLines reads the file behind uri from the file system, ignoring open buffers.
func (self *FileReader) DiskLines(uri string) ([]string, error) {
	path, err := URIPath(uri)
	if err != nil {
		return nil, err
	}
	content, err := afero.ReadFile(self.fs, path)
	if err != nil {
		return nil, newError(FileUnreadable, "cannot read file", map[string]interface{}{
			"uri": uri,
		}, err)
	}
	return SplitLines(string(content)), nil
}

// Lines returns the open buffer for uri if there is one, otherwise the file on disk.
func (self *FileReader) Lines(uri string) ([]string, error) {
	if self.documents != nil {
		if text, ok := self.documents.DocumentText(uri); ok {
			return SplitLines(text), nil
		}
	}
	return self.DiskLines(uri)
}
