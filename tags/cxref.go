package tags

import (
	"regexp"
	"strconv"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// A cxref line looks like:
//
//	main              10 src/main.c  main (argc, argv) {
var cxrefPattern = regexp.MustCompile(`^(\S+)\s+(\d+)\s+(\S+)\s+(\S.*)$`)

var macroPattern = regexp.MustCompile(`#\s*define`)

// Record is one line of cross reference output. Line is 1-based as printed.
type Record struct {
	Symbol  string
	Line    int
	Path    string
	Context string
}

// ParseCxref parses a single cxref line. Path and Context are not validated.
func ParseCxref(line string) (Record, error) {
	match := cxrefPattern.FindStringSubmatch(line)
	if match == nil {
		log.Debugf("malformed cxref: %q", line)
		return Record{}, newError(MalformedIndexRecord, "cannot parse index record", map[string]interface{}{
			"record": line,
		}, nil)
	}

	number, err := strconv.ParseUint(match[2], 10, 31)
	if err != nil || number == 0 {
		return Record{}, newError(InvalidLineNumber, "not a valid line number", map[string]interface{}{
			"record": line,
			"line":   match[2],
		}, err)
	}

	return Record{
		Symbol:  match[1],
		Line:    int(number),
		Path:    match[3],
		Context: match[4],
	}, nil
}

// Kind guesses the symbol kind from the source context. Lines that look like a
// preprocessor define are reported as SymbolKindNull, everything else as a
// function. This is a heuristic, not a classification.
func (self Record) Kind() protocol.SymbolKind {
	if macroPattern.MatchString(self.Context) {
		return protocol.SymbolKindNull
	}
	return protocol.SymbolKindFunction
}
