package composer

import (
	"io"

	"github.com/idlab-discover/buckwheat-cli/internal/logging"
	"github.com/idlab-discover/buckwheat-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Submit:", PrefixColor: ui.FgCyan}

// SetLogger sets an optional destination for submission logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(requestID string, format string, args ...any) {
	logger.Logf(requestID, format, args...)
}
