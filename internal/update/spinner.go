package update

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CheckWithSpinner runs the release check behind an in-terminal spinner.
// Falls back to a plain check when the terminal cannot host the program.
func (c *Checker) CheckWithSpinner(ctx context.Context, current string) (Result, error) {
	model := newSpinnerModel(ctx, c, current)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return c.Check(ctx, current)
	}
	out, ok := final.(spinnerModel)
	if !ok || !out.done {
		return c.Check(ctx, current)
	}
	return out.result, out.err
}

type checkDoneMsg struct {
	result Result
	err    error
}

type spinnerModel struct {
	spin    spinner.Model
	ctx     context.Context
	checker *Checker
	current string
	result  Result
	err     error
	done    bool
}

func newSpinnerModel(ctx context.Context, checker *Checker, current string) spinnerModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinnerModel{spin: spin, ctx: ctx, checker: checker, current: current}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.runCheck)
}

func (m spinnerModel) runCheck() tea.Msg {
	result, err := m.checker.Check(m.ctx, m.current)
	return checkDoneMsg{result: result, err: err}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case checkDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spin.View() + " checking for updates..."
}
