package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/idlab-discover/buckwheat-cli/internal/ui"
)

// Logger is a tiny opt-in logger used across internal packages.
// When Writer is nil, logging is disabled.
//
// The output format is:
//
//	<ColoredPrefix> req=<requestID> <formattedMessage>\n
//
// where <requestID> is trimmed and defaults to "-".
type Logger struct {
	Writer io.Writer

	PrefixText  string
	PrefixColor string

	// OmitRequest controls whether the request field is written.
	OmitRequest bool
}

func (l *Logger) SetWriter(w io.Writer) { l.Writer = w }

func (l *Logger) Enabled() bool { return l != nil && l.Writer != nil }

func (l *Logger) Logf(requestID string, format string, args ...any) {
	if l == nil || l.Writer == nil {
		return
	}
	prefix := l.PrefixText
	if prefix == "" {
		prefix = "Log:"
	}
	if l.PrefixColor != "" {
		prefix = ui.Color(prefix, l.PrefixColor)
	}
	msg := fmt.Sprintf(format, args...)
	if l.OmitRequest {
		fmt.Fprintf(l.Writer, "%s %s\n", prefix, msg)
		return
	}

	r := strings.TrimSpace(requestID)
	if r == "" {
		r = "-"
	}
	fmt.Fprintf(l.Writer, "%s req=%s %s\n", prefix, r, msg)
}
