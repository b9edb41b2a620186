package tags

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Locator turns an index hit (file, 0-based line, symbol) into a range.
type Locator struct {
	files *FileReader

	// LowPrecision skips reading the file and points at the start of the line.
	LowPrecision bool
}

func NewLocator(files *FileReader, lowPrecision bool) *Locator {
	return &Locator{files: files, LowPrecision: lowPrecision}
}

// Locate finds the first occurrence of symbol on line. Only the first
// occurrence is used even when the symbol repeats on that line.
func (self *Locator) Locate(uri string, line int, symbol string) (protocol.Location, error) {
	if self.LowPrecision {
		position := protocol.Position{Line: protocol.UInteger(line)}
		return protocol.Location{
			URI:   uri,
			Range: protocol.Range{Start: position, End: position},
		}, nil
	}

	lines, err := self.files.DiskLines(uri)
	if err != nil {
		return protocol.Location{}, err
	}
	if line < 0 || line >= len(lines) {
		return protocol.Location{}, newError(LineIndexOutOfRange, "line is out of range", map[string]interface{}{
			"uri":   uri,
			"line":  line,
			"lines": len(lines),
		}, nil)
	}

	start := strings.Index(lines[line], symbol)
	if start < 0 {
		return protocol.Location{}, newError(SymbolNotFoundInLine, "symbol not found in line", map[string]interface{}{
			"uri":    uri,
			"line":   line,
			"symbol": symbol,
		}, nil)
	}

	return protocol.Location{
		URI: uri,
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(UTF16Column(lines[line], start))},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(UTF16Column(lines[line], start+len(symbol)))},
		},
	}, nil
}
