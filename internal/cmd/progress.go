package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Iron-Ham/conclist/internal/stress"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// roundDoneMsg is sent when the runner completes a round.
type roundDoneMsg stress.RoundResult

// runDoneMsg is sent when Run returns.
type runDoneMsg struct {
	report *stress.Report
	err    error
}

// progressModel shows a spinner and a round progress bar while a stress run
// executes. The total is re-read on every render so a reloaded round count
// shows up immediately.
type progressModel struct {
	spinner spinner.Model
	bar     progress.Model
	rounds  func() int

	done   int
	failed int

	finished bool
	report   *stress.Report
	err      error
}

func newProgressModel(rounds func() int, width int) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = s.Style.Foreground(primaryColor)

	barWidth := 40
	if width > 0 && width/2 < barWidth {
		barWidth = width / 2
	}
	bar := progress.New(
		progress.WithGradient(string(primaryColor), string(successColor)),
		progress.WithWidth(barWidth),
	)

	return progressModel{spinner: s, bar: bar, rounds: rounds}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case roundDoneMsg:
		m.done++
		if !stress.RoundResult(msg).OK() {
			m.failed++
		}
		return m, nil

	case runDoneMsg:
		m.finished = true
		m.report = msg.report
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.finished {
		return ""
	}

	total := max(m.rounds(), m.done, 1)
	percent := float64(m.done) / float64(total)

	status := fmt.Sprintf("%d/%d rounds", m.done, total)
	if m.failed > 0 {
		status += fmt.Sprintf(", %d failed", m.failed)
	}
	return fmt.Sprintf("%s %s %s\n", m.spinner.View(), m.bar.ViewAs(percent), status)
}

// runWithProgress executes the runner while rendering progressModel to out.
// It returns once the run has finished and the progress line is cleared.
func runWithProgress(ctx context.Context, runner *stress.Runner, out io.Writer) (*stress.Report, error) {
	model := newProgressModel(func() int { return runner.Config().Rounds }, terminalWidth(out))
	program := tea.NewProgram(model,
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	runner.OnRound(func(result stress.RoundResult) {
		program.Send(roundDoneMsg(result))
	})
	go func() {
		report, err := runner.Run(ctx)
		program.Send(runDoneMsg{report: report, err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to render progress: %w", err)
	}
	done := final.(progressModel)
	return done.report, done.err
}
