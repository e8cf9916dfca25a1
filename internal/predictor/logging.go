package predictor

import (
	"io"

	"github.com/idlab-discover/buckwheat-cli/internal/logging"
	"github.com/idlab-discover/buckwheat-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Predict:", PrefixColor: ui.FgMagenta}

// SetLogger sets an optional destination for request logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(requestID string, format string, args ...any) {
	logger.Logf(requestID, format, args...)
}
