package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ResultState mirrors the result panel states from internal/form
// to avoid circular imports
type ResultState int

const (
	ResultIdle ResultState = iota
	ResultPending
	ResultSuccess
	ResultFailed
)

// ResultReport is a snapshot of the result panel ready for rendering.
type ResultReport struct {
	State     ResultState
	Heading   string
	Lines     []string
	RequestID string
	Elapsed   time.Duration
}

// ResultUI renders prediction results and validation alerts.
type ResultUI struct {
	writer io.Writer
	quiet  bool
}

// NewResultUI creates a new UI handler for prediction results
func NewResultUI(w io.Writer, quiet bool) *ResultUI {
	return &ResultUI{
		writer: w,
		quiet:  quiet,
	}
}

// PrintReport renders the panel in a box colored after its state
func (r *ResultUI) PrintReport(report ResultReport) {
	if r.quiet {
		return
	}
	fmt.Fprintln(r.writer, r.Render(report))
}

// Render returns the boxed panel without printing it.
func (r *ResultUI) Render(report ResultReport) string {
	var sb strings.Builder

	heading := report.Heading
	if heading == "" {
		heading = "Prediction Results:"
	}

	switch report.State {
	case ResultSuccess:
		sb.WriteString(Success.Bold(true).Render("✓ " + heading))
	case ResultFailed:
		sb.WriteString(Error.Bold(true).Render("✗ " + heading))
	case ResultPending:
		sb.WriteString(Secondary.Bold(true).Render(heading))
	default:
		sb.WriteString(Bold.Render(heading))
	}

	for _, line := range report.Lines {
		sb.WriteString("\n")
		switch report.State {
		case ResultSuccess:
			sb.WriteString(Success.Render(line))
		case ResultFailed:
			sb.WriteString(Error.Render(line))
		default:
			sb.WriteString(line)
		}
	}

	if report.RequestID != "" || report.Elapsed > 0 {
		sb.WriteString("\n\n")
		var meta []string
		if report.RequestID != "" {
			meta = append(meta, FormatKeyValue("Request", report.RequestID))
		}
		if report.Elapsed > 0 {
			meta = append(meta, FormatKeyValue("Took", report.Elapsed.Round(time.Millisecond).String()))
		}
		sb.WriteString(Muted.Render(strings.Join(meta, "  ")))
	}

	return panelBox(report.State, sb.String())
}

// PrintAlert shows a blocking validation message. Alerts are printed even in
// quiet mode since nothing else tells the user why no request was sent.
func (r *ResultUI) PrintAlert(message string) {
	fmt.Fprintln(r.writer, FormatStatus("warning", Warning.Render(message)))
}

// PrintPlain writes the panel lines without styling, one per line.
func (r *ResultUI) PrintPlain(report ResultReport) {
	if report.State == ResultFailed {
		fmt.Fprintln(r.writer, strings.TrimSuffix(report.Heading, ":"))
	}
	for _, line := range report.Lines {
		fmt.Fprintln(r.writer, line)
	}
}
