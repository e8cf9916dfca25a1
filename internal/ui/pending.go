package ui

import (
	"context"
	"io"
	"os"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-isatty"

	"github.com/idlab-discover/buckwheat-cli/internal/apperr"
)

type pendingDoneMsg struct{ err error }

// pendingModel shows a spinner next to the interim "Predicting..." text while
// work runs. It quits as soon as work returns.
type pendingModel struct {
	spinner   spinner.Model
	title     string
	work      func() error
	cancel    context.CancelFunc
	done      bool
	cancelled bool
	err       error
}

func newPendingModel(title string, work func() error, cancel context.CancelFunc) *pendingModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorSecondary)),
	)
	return &pendingModel{spinner: s, title: title, work: work, cancel: cancel}
}

func (m *pendingModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m *pendingModel) run() tea.Msg {
	return pendingDoneMsg{err: m.work()}
}

func (m *pendingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// The request keeps its context; cancelling it lets run() return.
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
	case pendingDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *pendingModel) View() tea.View {
	return tea.NewView(m.render())
}

func (m *pendingModel) render() string {
	if m.done {
		return ""
	}
	line := m.spinner.View() + " " + Secondary.Render(m.title)
	if m.cancelled {
		line += Dim.Render(" (cancelling...)")
	}
	return line + "\n"
}

// RunPending runs work while showing a spinner on w. When w is not a terminal
// work runs without animation.
func RunPending(ctx context.Context, w io.Writer, title string, work func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !IsTerminal(w) {
		return work(ctx)
	}

	m := newPendingModel(title, func() error { return work(ctx) }, cancel)
	final, err := tea.NewProgram(m, tea.WithOutput(w)).Run()
	if err != nil {
		return err
	}

	pm := final.(*pendingModel)
	if pm.cancelled {
		return apperr.ErrCancelled
	}
	return pm.err
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
