package tags

import (
	"regexp"
)

var symbolPattern = regexp.MustCompile(`[_0-9a-zA-Z]+`)

// IsSymbol reports whether s is a non-empty run of identifier characters.
func IsSymbol(s string) bool {
	loc := symbolPattern.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// SymbolAt returns the first identifier run in line whose span [start, end)
// touches column, inclusive on both ends.
func SymbolAt(line string, column int) (string, error) {
	for _, loc := range symbolPattern.FindAllStringIndex(line, -1) {
		if loc[0] <= column && column <= loc[1] {
			return line[loc[0]:loc[1]], nil
		}
	}
	return "", newError(NoSymbolAtPosition, "no word found at the specified position", map[string]interface{}{
		"line":   line,
		"column": column,
	}, nil)
}

// SymbolAtPosition is SymbolAt over a document, failing when line is out of bounds.
func SymbolAtPosition(lines []string, line int, column int) (string, error) {
	if line < 0 || line >= len(lines) {
		return "", newError(NoSymbolAtPosition, "position is outside the document", map[string]interface{}{
			"line":  line,
			"lines": len(lines),
		}, nil)
	}
	return SymbolAt(lines[line], column)
}

// SymbolRangeAt is SymbolAt returning the byte span of the run instead of its text.
func SymbolRangeAt(line string, column int) (int, int, bool) {
	for _, loc := range symbolPattern.FindAllStringIndex(line, -1) {
		if loc[0] <= column && column <= loc[1] {
			return loc[0], loc[1], true
		}
	}
	return 0, 0, false
}
