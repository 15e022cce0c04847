// Package tui renders live progress for a pipeline run: the current phase
// (fetch paging, enrichment, each analysis stage) plus a tail of the text
// streaming back from the model.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const detailTailLen = 80

// ProgressMsg updates the displayed phase and appends streamed detail.
type ProgressMsg struct {
	Phase  string
	Detail string
}

// DoneMsg ends the program.
type DoneMsg struct {
	Err error
}

type model struct {
	spinner spinner.Model
	phase   string
	detail  string
	done    bool
	err     error
}

func newModel() model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle
	return model{spinner: sp, phase: "Starting"}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		if msg.Phase != "" && msg.Phase != m.phase {
			m.phase = msg.Phase
			m.detail = ""
		}
		if msg.Detail != "" {
			m.detail = tail(m.detail+msg.Detail, detailTailLen)
		}
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		if m.err != nil {
			return ""
		}
		return doneStyle.Render("✓ Assessment ready") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(m.spinner.View())
	sb.WriteString(" ")
	sb.WriteString(phaseStyle.Render(m.phase))
	if m.detail != "" {
		sb.WriteString("\n  ")
		sb.WriteString(detailStyle.Render(sanitize(m.detail)))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Run executes work while rendering its progress. work runs in a
// goroutine and reports phase changes and streamed detail through the
// given callback; its error is returned after the display shuts down.
func Run(work func(report func(phase, detail string)) error) error {
	p := tea.NewProgram(newModel())

	errCh := make(chan error, 1)
	go func() {
		err := work(func(phase, detail string) {
			p.Send(ProgressMsg{Phase: phase, Detail: detail})
		})
		errCh <- err
		p.Send(DoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	return <-errCh
}

func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// sanitize flattens streamed chunks onto one display line.
func sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
