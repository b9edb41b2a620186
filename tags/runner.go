package tags

import (
	"bytes"
	contextpkg "context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultMaxOutput bounds how much stdout a single query may produce.
const DefaultMaxOutput int64 = 64 << 20

// Tool runs the index program in a directory and returns its stdout as lines.
type Tool interface {
	Query(context contextpkg.Context, dir string, args ...string) ([]string, error)
}

// Argument vectors for the query kinds understood by global(1).

func CompletionArgs(prefix string) []string {
	return []string{"-c", prefix}
}

func SymbolCompletionArgs(prefix string) []string {
	return []string{"-s", "-x", prefix + "."}
}

func DefinitionArgs(symbol string) []string {
	return []string{"-d", "-x", symbol}
}

func ReferenceArgs(symbol string) []string {
	return []string{"-r", "-s", "-x", symbol}
}

func FileSymbolArgs(path string) []string {
	return []string{"-x", "-f", path}
}

//
// Command
//

// Command is a Tool backed by a child process.
type Command struct {
	Program   string
	MaxOutput int64
	Timeout   time.Duration
}

func NewCommand(program string) *Command {
	return &Command{Program: program, MaxOutput: DefaultMaxOutput}
}

// Query runs the program with dir as its working directory. The exit status and
// stderr are not inspected, so a failing run with no output reads as no results.
func (self *Command) Query(context contextpkg.Context, dir string, args ...string) ([]string, error) {
	if self.Timeout > 0 {
		var cancel contextpkg.CancelFunc
		context, cancel = contextpkg.WithTimeout(context, self.Timeout)
		defer cancel()
	}
	// Cancelled to kill the child once its output is over the limit.
	context, kill := contextpkg.WithCancel(context)
	defer kill()

	data := map[string]interface{}{
		"program": self.Program,
		"args":    strings.Join(args, " "),
		"cwd":     dir,
	}

	command := exec.CommandContext(context, self.Program, args...)
	command.Dir = dir
	stdout, err := command.StdoutPipe()
	if err != nil {
		return nil, newError(ToolSpawnFailed, "cannot execute index tool", data, err)
	}
	if err := command.Start(); err != nil {
		return nil, newError(ToolSpawnFailed, "cannot execute index tool", data, err)
	}

	log.Debugf("run %s %s in %s", self.Program, data["args"], dir)

	limit := self.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}
	var buffer bytes.Buffer
	_, readErr := io.Copy(&buffer, io.LimitReader(stdout, limit+1))
	overflow := int64(buffer.Len()) > limit
	if overflow {
		kill()
	}

	waitErr := command.Wait()
	if overflow {
		data["limit"] = limit
		return nil, newError(InvalidToolOutput, "index tool output exceeds limit", data, nil)
	}
	if err := context.Err(); err != nil {
		return nil, newError(ToolExecutionFailed, "index tool did not finish", data, err)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, newError(ToolExecutionFailed, "cannot wait for index tool", data, waitErr)
		}
		log.Debugf("%s exited with %d", self.Program, exitErr.ExitCode())
	}
	if readErr != nil {
		return nil, newError(ToolExecutionFailed, "cannot read index tool output", data, readErr)
	}
	if !utf8.Valid(buffer.Bytes()) {
		return nil, newError(InvalidToolOutput, "index tool output is not valid UTF-8", data, nil)
	}

	return SplitLines(buffer.String()), nil
}

// Check verifies once that the program can be started at all.
func (self *Command) Check(context contextpkg.Context) error {
	command := exec.CommandContext(context, self.Program, "--version")
	if err := command.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return newError(ToolSpawnFailed, self.Program+": command not found", map[string]interface{}{
			"program": self.Program,
		}, err)
	}
	return nil
}
