package tags

import (
	"github.com/op/go-logging"
)

// LogName is the logger module used by this package.
const LogName = "tags-lsp.index"

var log = logging.MustGetLogger(LogName)
