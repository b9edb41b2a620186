package tags

import (
	contextpkg "context"
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/sync/errgroup"
)

// Hit is a parsed index record together with its resolved location.
type Hit struct {
	Record   Record
	Location protocol.Location
}

// SymbolInformation converts the hit into the flat LSP symbol form.
func (self Hit) SymbolInformation() protocol.SymbolInformation {
	return protocol.SymbolInformation{
		Name:     self.Record.Symbol,
		Kind:     self.Record.Kind(),
		Location: self.Location,
	}
}

// Index answers queries for one workspace folder at a time by running the
// index tool and resolving every record it prints.
type Index struct {
	tool    Tool
	locator *Locator
	exact   *Locator
}

func NewIndex(tool Tool, files *FileReader, lowPrecision bool) *Index {
	return &Index{
		tool:    tool,
		locator: NewLocator(files, lowPrecision),
		exact:   NewLocator(files, false),
	}
}

// LowPrecision reports whether hits are resolved to line starts only.
func (self *Index) LowPrecision() bool {
	return self.locator.LowPrecision
}

// Scan runs the query in root and calls visit for each hit in output order
// until visit returns false. Stale hits are logged and skipped. Any other
// failure aborts the scan.
func (self *Index) Scan(context contextpkg.Context, root string, args []string, visit func(Hit) bool) error {
	return self.scan(context, self.locator, root, args, visit)
}

func (self *Index) scan(context contextpkg.Context, locator *Locator, root string, args []string, visit func(Hit) bool) error {
	rootPath, err := URIPath(root)
	if err != nil {
		return err
	}

	lines, err := self.tool.Query(context, rootPath, args...)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if err := context.Err(); err != nil {
			return newError(ToolExecutionFailed, "query cancelled", map[string]interface{}{"cwd": rootPath}, err)
		}

		record, err := ParseCxref(line)
		if err != nil {
			return err
		}
		uri, err := JoinWorkspacePath(root, record.Path)
		if err != nil {
			return err
		}
		location, err := locator.Locate(uri, record.Line-1, record.Symbol)
		if err != nil {
			if IsStale(err) {
				log.Warningf("skipping stale index entry: %s", err.Error())
				continue
			}
			return err
		}

		if !visit(Hit{Record: record, Location: location}) {
			break
		}
	}

	return nil
}

func (self *Index) locations(context contextpkg.Context, locator *Locator, root string, args []string) ([]protocol.Location, error) {
	locations := make([]protocol.Location, 0)
	err := self.scan(context, locator, root, args, func(hit Hit) bool {
		locations = append(locations, hit.Location)
		return true
	})
	if err != nil {
		return nil, err
	}
	return locations, nil
}

// Definitions runs a definition lookup (-d -x).
func (self *Index) Definitions(context contextpkg.Context, root string, symbol string) ([]protocol.Location, error) {
	return self.locations(context, self.locator, root, DefinitionArgs(symbol))
}

// References runs a reference lookup (-r -s -x).
func (self *Index) References(context contextpkg.Context, root string, symbol string) ([]protocol.Location, error) {
	return self.locations(context, self.locator, root, ReferenceArgs(symbol))
}

// Occurrences returns definitions followed by references with exact ranges,
// regardless of the configured precision.
func (self *Index) Occurrences(context contextpkg.Context, root string, symbol string) ([]protocol.Location, error) {
	definitions, err := self.locations(context, self.exact, root, DefinitionArgs(symbol))
	if err != nil {
		return nil, err
	}
	references, err := self.locations(context, self.exact, root, ReferenceArgs(symbol))
	if err != nil {
		return nil, err
	}
	return append(definitions, references...), nil
}

// FileSymbols lists the symbols defined in one file (-x -f).
func (self *Index) FileSymbols(context contextpkg.Context, root string, path string) ([]protocol.SymbolInformation, error) {
	symbols := make([]protocol.SymbolInformation, 0)
	err := self.Scan(context, root, FileSymbolArgs(path), func(hit Hit) bool {
		symbols = append(symbols, hit.SymbolInformation())
		return true
	})
	if err != nil {
		return nil, err
	}
	return symbols, nil
}

// Completions merges tag name completion (-c) with symbol completion (-s -x)
// and returns at most limit unique names in sorted order.
func (self *Index) Completions(context contextpkg.Context, root string, prefix string, limit int) ([]string, error) {
	rootPath, err := URIPath(root)
	if err != nil {
		return nil, err
	}

	var names, records []string
	group, groupContext := errgroup.WithContext(context)
	group.Go(func() error {
		var err error
		names, err = self.tool.Query(groupContext, rootPath, CompletionArgs(prefix)...)
		return err
	})
	group.Go(func() error {
		var err error
		records, err = self.tool.Query(groupContext, rootPath, SymbolCompletionArgs(prefix)...)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	unique := make(map[string]struct{})
	for _, name := range names {
		if name != "" {
			unique[name] = struct{}{}
		}
	}
	for _, line := range records {
		record, err := ParseCxref(line)
		if err != nil {
			return nil, err
		}
		unique[record.Symbol] = struct{}{}
	}

	result := make([]string, 0, len(unique))
	for name := range unique {
		result = append(result, name)
	}
	sort.Strings(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
