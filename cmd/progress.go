package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/archivist/internal/application"
)

type stageStartedMsg application.Stage

type pipelineDoneMsg struct {
	err error
}

// pipelineModel shows the running stage next to a spinner and the stages
// already passed above it.
type pipelineModel struct {
	spinner  spinner.Model
	passed   lipgloss.Style
	current  application.Stage
	finished []application.Stage
	run      tea.Cmd
	err      error
	done     bool
}

func newPipelineModel(run tea.Cmd) pipelineModel {
	return pipelineModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		passed: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		run:    run,
	}
}

func (m pipelineModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m pipelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case stageStartedMsg:
		if m.current != "" {
			m.finished = append(m.finished, m.current)
		}
		m.current = application.Stage(msg)
		return m, nil
	case pipelineDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m pipelineModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	for _, stage := range m.finished {
		b.WriteString(m.passed.Render("✓ " + string(stage)))
		b.WriteByte('\n')
	}
	if m.current == "" {
		fmt.Fprintf(&b, "%s starting", m.spinner.View())
		return b.String()
	}
	fmt.Fprintf(&b, "%s [%d/%d] %s", m.spinner.View(), application.StageIndex(m.current), len(application.Stages), m.current)
	return b.String()
}

// runPipelineProgress drives run while output shows which stage it is in.
// Stages reported through the callback reach the model as messages.
func runPipelineProgress(ctx context.Context, output io.Writer, run func(context.Context, application.ProgressFunc) error) error {
	var p *tea.Program
	report := func(stage application.Stage) {
		p.Send(stageStartedMsg(stage))
	}
	runCmd := func() tea.Msg {
		return pipelineDoneMsg{err: run(ctx, report)}
	}

	p = tea.NewProgram(
		newPipelineModel(runCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(pipelineModel)
	if !ok {
		return fmt.Errorf("unexpected final progress model type %T", finalModel)
	}

	return result.err
}
