package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tridxis/price-agent/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	maxHistory     = 20
	analyzeTimeout = 90 * time.Second
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true)
)

// Analyzer mirrors the analysis surface the console needs.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
}

type entry struct {
	question string
	result   domain.Analysis
	err      error
}

type analysisMsg struct {
	question string
	result   domain.Analysis
	err      error
}

// Model is the interactive console: one input line, a spinner while the
// classifiers run, and a scrollback of shaped results.
type Model struct {
	analyzer Analyzer
	input    textinput.Model
	spinner  spinner.Model
	history  []entry
	waiting  bool
	width    int
	height   int
}

func NewModel(analyzer Analyzer) Model {
	ti := textinput.New()
	ti.Placeholder = "is BTC going up tomorrow?"
	ti.CharLimit = 512
	ti.Width = 64
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		analyzer: analyzer,
		input:    ti,
		spinner:  sp,
	}
}

// SetSize adjusts the layout before the program starts, typically from the
// SSH session's PTY dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if width > 8 {
		m.input.Width = width - 8
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.waiting = true
			m.input.SetValue("")
			return m, tea.Batch(m.spinner.Tick, analyzeCmd(m.analyzer, text))
		}

	case analysisMsg:
		m.waiting = false
		m.history = append(m.history, entry{question: msg.question, result: msg.result, err: msg.err})
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("price-agent console"))
	sb.WriteString("\n\n")

	for _, e := range m.history {
		sb.WriteString(questionStyle.Render("> " + e.question))
		sb.WriteString("\n")
		if e.err != nil {
			sb.WriteString(errorStyle.Render("  analysis failed: " + e.err.Error()))
		} else {
			sb.WriteString(renderAnalysis(e.result))
		}
		sb.WriteString("\n\n")
	}

	if m.waiting {
		sb.WriteString(m.spinner.View())
		sb.WriteString(" analyzing...\n\n")
	}

	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("enter: analyze - esc: quit"))
	return sb.String()
}

func renderAnalysis(a domain.Analysis) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "  %s %s",
		labelStyle.Render("intent"),
		valueStyle.Render(fmt.Sprintf("%s (%.0f%%)", a.Intent.Primary, a.Intent.Confidence*100)),
	)
	for _, s := range a.Intent.Secondary {
		fmt.Fprintf(&sb, "%s", labelStyle.Render(fmt.Sprintf(", %s (%.0f%%)", s.Label, s.Score*100)))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "  %s %s\n",
		labelStyle.Render("sentiment"),
		valueStyle.Render(fmt.Sprintf("%s (%.0f%%)", a.Sentiment.Label, a.Sentiment.Score*100)),
	)

	if len(a.Entities) > 0 {
		sb.WriteString("  " + labelStyle.Render("entities") + " ")
		parts := make([]string, 0, len(a.Entities))
		for _, e := range a.Entities {
			parts = append(parts, fmt.Sprintf("%s=%s (%.0f%%)", e.Type, e.Value, e.Confidence*100))
		}
		sb.WriteString(valueStyle.Render(strings.Join(parts, ", ")))
	}
	return sb.String()
}

func analyzeCmd(analyzer Analyzer, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
		defer cancel()

		result, err := analyzer.Analyze(ctx, text)
		return analysisMsg{question: text, result: result, err: err}
	}
}
