package form

import (
	"io"

	"github.com/idlab-discover/buckwheat-cli/internal/logging"
	"github.com/idlab-discover/buckwheat-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Form:", PrefixColor: ui.FgYellow, OmitRequest: true}

// SetLogger sets an optional destination for form diagnostics.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(requestID string, format string, args ...any) {
	logger.Logf(requestID, format, args...)
}
