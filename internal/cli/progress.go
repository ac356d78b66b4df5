package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/mandel/pkg/pipeline"
)

// progressBarWidth is the number of cells in the bar.
const progressBarWidth = 40

// rowsMsg reports render progress.
type rowsMsg struct{ done, total int }

// renderDoneMsg carries the pipeline outcome and ends the program.
type renderDoneMsg struct {
	result *pipeline.Result
	err    error
}

// renderModel is the bubbletea model behind `render --progress`.
type renderModel struct {
	title    string
	done     int
	total    int
	start    time.Time
	now      func() time.Time
	cancel   context.CancelFunc
	stopping bool

	result *pipeline.Result
	err    error
}

func newRenderModel(title string, total int, cancel context.CancelFunc) renderModel {
	return renderModel{
		title:  title,
		total:  total,
		start:  time.Now(),
		now:    time.Now,
		cancel: cancel,
	}
}

func (m renderModel) Init() tea.Cmd {
	return nil
}

func (m renderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// The render stops at the next row and reports back.
			m.stopping = true
			if m.cancel != nil {
				m.cancel()
			}
		}
	case rowsMsg:
		m.done, m.total = msg.done, msg.total
	case renderDoneMsg:
		m.result, m.err = msg.result, msg.err
		if msg.err == nil {
			m.done = m.total
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m renderModel) View() string {
	if m.result != nil || m.err != nil {
		return ""
	}

	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}
	filled := int(frac * progressBarWidth)

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(StyleHighlight.Render(strings.Repeat("█", filled)))
	b.WriteString(StyleDim.Render(strings.Repeat("░", progressBarWidth-filled)))
	b.WriteString(fmt.Sprintf(" %3.0f%%", frac*100))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  row %d/%d  %s",
		m.done, m.total, m.now().Sub(m.start).Round(100*time.Millisecond))))
	b.WriteString("\n")
	if m.stopping {
		b.WriteString(StyleWarning.Render("stopping..."))
	} else {
		b.WriteString(StyleDim.Render("q to cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// runWithProgressBar runs the pipeline while a bubbletea program draws a
// progress bar on stderr. Progress is sent once per percent.
func runWithProgressBar(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	title := fmt.Sprintf("Rendering %d x %d, max %d iterations",
		opts.Region.PixelWidth(), opts.Region.PixelHeight(), opts.MaxIter)
	p := tea.NewProgram(newRenderModel(title, opts.Region.PixelHeight(), cancel), tea.WithOutput(os.Stderr))

	last := -1
	opts.Progress = func(done, total int) error {
		if pct := done * 100 / total; pct != last {
			last = pct
			p.Send(rowsMsg{done: done, total: total})
		}
		return nil
	}

	go func() {
		result, err := runner.Execute(ctx, opts)
		p.Send(renderDoneMsg{result: result, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(renderModel)
	return m.result, m.err
}
