package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/mandelzoom/pkg/fractal"
	"github.com/matzehuels/mandelzoom/pkg/pipeline"
)

const progressBarWidth = 40

var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// zoomModel - Frame progress for a running zoom job
// =============================================================================

type frameMsg pipeline.Progress

type jobDoneMsg struct {
	result *pipeline.Result
	err    error
}

// zoomModel is the bubbletea model showing frame progress. Quitting cancels
// the job and waits for it to wind down.
type zoomModel struct {
	title    string
	start    time.Time
	cancel   context.CancelFunc
	last     pipeline.Progress
	cached   int
	stopping bool
	finished bool
	err      error
}

func newZoomModel(job pipeline.Job, cancel context.CancelFunc) zoomModel {
	return zoomModel{
		title:  fmt.Sprintf("Zooming %s · %s · %s", job.Request.Hash(), job.Variant, job.Codec),
		start:  time.Now(),
		cancel: cancel,
	}
}

func (m zoomModel) Init() tea.Cmd {
	return nil
}

func (m zoomModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.stopping = true
			m.cancel()
		}
	case frameMsg:
		m.last = pipeline.Progress(msg)
		if msg.Cached {
			m.cached++
		}
	case jobDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m zoomModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n\n")

	total := m.last.Total
	if total == 0 {
		b.WriteString(StyleDim.Render("  planning frames..."))
	} else {
		b.WriteString("  " + renderBar(m.last.Done, total, progressBarWidth) + " ")
		b.WriteString(StyleNumber.Render(fmt.Sprintf("%d/%d", m.last.Done, total)))
		b.WriteString("\n  ")
		b.WriteString(StyleDim.Render(fmt.Sprintf("width %s · %.3gx · %d cached",
			fractal.FormatFloat(m.last.Frame.Width), fractal.DefaultWidth/m.last.Frame.Width, m.cached)))
		if m.last.Done == total && !m.finished {
			b.WriteString("\n  " + StyleDim.Render("encoding..."))
		}
	}
	b.WriteString("\n\n")

	if m.stopping {
		b.WriteString(StyleWarning.Render("  cancelling..."))
	} else {
		elapsed := time.Since(m.start).Round(time.Second)
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %s elapsed · q quit", elapsed)))
	}
	b.WriteString("\n")
	return b.String()
}

// renderBar draws a done/total progress bar of the given width.
func renderBar(done, total, width int) string {
	if total <= 0 {
		return barEmptyStyle.Render(strings.Repeat("░", width))
	}
	full := done * width / total
	if full > width {
		full = width
	}
	return barFullStyle.Render(strings.Repeat("█", full)) + barEmptyStyle.Render(strings.Repeat("░", width-full))
}

// runZoomTUI executes job while showing its progress. Log output below warn
// is suppressed for the duration so it does not tear the view.
func runZoomTUI(ctx context.Context, runner *pipeline.Runner, logger *log.Logger, job pipeline.Job) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	level := logger.GetLevel()
	logger.SetLevel(log.WarnLevel)
	defer logger.SetLevel(level)

	p := tea.NewProgram(newZoomModel(job, cancel), tea.WithOutput(os.Stderr))
	job.Progress = func(pr pipeline.Progress) { p.Send(frameMsg(pr)) }

	done := make(chan jobDoneMsg, 1)
	go func() {
		res, err := runner.Execute(ctx, job)
		msg := jobDoneMsg{result: res, err: err}
		done <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("progress view: %w", err)
	}
	msg := <-done
	return msg.result, msg.err
}
