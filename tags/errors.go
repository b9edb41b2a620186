package tags

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code identifies a failure class. Codes are stable and surface to the client.
type Code string

const (
	NoOwningWorkspace    Code = "NoOwningWorkspace"
	NoSymbolAtPosition   Code = "NoSymbolAtPosition"
	ToolSpawnFailed      Code = "ToolSpawnFailed"
	ToolExecutionFailed  Code = "ToolExecutionFailed"
	InvalidToolOutput    Code = "InvalidToolOutput"
	MalformedIndexRecord Code = "MalformedIndexRecord"
	InvalidLineNumber    Code = "InvalidLineNumber"
	LineIndexOutOfRange  Code = "LineIndexOutOfRange"
	SymbolNotFoundInLine Code = "SymbolNotFoundInLine"
	PathNotAbsolute      Code = "PathNotAbsolute"
	FileUnreadable       Code = "FileUnreadable"
	InvalidRename        Code = "InvalidRename"
	ServerNotInitialized Code = "ServerNotInitialized"
	ServerShuttingDown   Code = "ServerShuttingDown"
)

// JSON-RPC error codes used when reporting an Error to the client.
const (
	RPCInvalidRequest       = -32600
	RPCInvalidParams        = -32602
	RPCServerNotInitialized = -32002
	RPCRequestFailed        = -32803
)

// Error is returned by every fallible step of the query path.
type Error struct {
	Code    Code
	Message string
	Data    map[string]interface{}
	Err     error
}

// NewError builds an *Error. data and cause may be nil.
func NewError(code Code, message string, data map[string]interface{}, cause error) *Error {
	return &Error{Code: code, Message: message, Data: data, Err: cause}
}

func newError(code Code, message string, data map[string]interface{}, cause error) *Error {
	return NewError(code, message, data, cause)
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.Data) > 0 {
		keys := make([]string, 0, len(e.Data))
		for key := range e.Data {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(&b, " %s=%v", key, e.Data[key])
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RPCCode maps the failure class onto a JSON-RPC error code. A file outside
// every workspace folder is a client usage error, the rest are request failures.
func (e *Error) RPCCode() int {
	switch e.Code {
	case NoOwningWorkspace, InvalidRename:
		return RPCInvalidParams
	case ServerNotInitialized:
		return RPCServerNotInitialized
	case ServerShuttingDown:
		return RPCInvalidRequest
	default:
		return RPCRequestFailed
	}
}

// Details is the structured data sent to the client along with the message.
// It always carries the code, and the cause when there is one.
func (e *Error) Details() map[string]interface{} {
	details := make(map[string]interface{}, len(e.Data)+2)
	for key, value := range e.Data {
		details[key] = value
	}
	details["code"] = string(e.Code)
	if e.Err != nil {
		details["cause"] = e.Err.Error()
	}
	return details
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsStale reports whether err means the index no longer matches the file on
// disk. Such failures are expected between edits and re-indexing.
func IsStale(err error) bool {
	switch CodeOf(err) {
	case LineIndexOutOfRange, SymbolNotFoundInLine, FileUnreadable:
		return true
	default:
		return false
	}
}
