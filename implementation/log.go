package implementation

import (
	"errors"

	"github.com/op/go-logging"

	"github.com/tminor/tags-lsp/tags"
)

const LogName = "tags-lsp"

var log = logging.MustGetLogger(LogName)

var logModules = []string{LogName, tags.LogName}

// setLogLevel changes the level of every logger module of the server.
func setLogLevel(level logging.Level) {
	for _, module := range logModules {
		logging.SetLevel(level, module)
	}
}

// fail logs a request failure with its diagnostic data and hands it back unchanged.
func fail(method string, err error) error {
	var e *tags.Error
	if errors.As(err, &e) {
		log.Errorf("%s failed (%d): %s", method, e.RPCCode(), e.Error())
	} else {
		log.Errorf("%s failed: %s", method, err.Error())
	}
	return err
}
