// internal/tui/model.go
// Package tui provides the interactive chat interface over the query pipeline.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/ragmill/internal/rag"
)

// Piper is the TUI-facing subset of the query pipeline.
type Piper interface {
	Pipe(ctx context.Context, req rag.PipeRequest) string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	statusStyle = lipgloss.NewStyle().Faint(true)
	queryStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type deltaMsg string
type answerMsg string

// Model is the Bubble Tea model for the chat session.
type Model struct {
	piper      Piper
	input      textinput.Model
	viewport   viewport.Model
	transcript []string
	partial    string
	deltas     chan string
	status     string
	busy       bool
	listening  bool
	ready      bool
}

// New creates the chat model.
func New(piper Piper) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		piper:    piper,
		input:    ti,
		viewport: vp,
		deltas:   make(chan string, 64),
		status:   "Ready.",
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and pipeline events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := queryStyle.GetFrameSize()
		reserved := 2 + qh // header + status
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vh
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter && !m.busy {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.transcript = append(m.transcript, userStyle.Render("You: ")+question)
			m.partial = ""
			m.busy = true
			m.status = "Generating..."
			m.input.SetValue("")
			m.refresh()
			cmds := []tea.Cmd{m.ask(question)}
			if !m.listening {
				m.listening = true
				cmds = append(cmds, m.nextDelta())
			}
			return m, tea.Batch(cmds...)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case deltaMsg:
		if m.busy {
			m.partial += string(msg)
			m.refresh()
		}
		return m, m.nextDelta()

	case answerMsg:
		m.transcript = append(m.transcript, string(msg), "")
		m.partial = ""
		m.busy = false
		m.status = "Ready."
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the chat transcript, input box, and status line.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("ragmill chat"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(queryStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}

// ask runs one query through the pipeline off the UI loop. Deltas arrive via
// the channel; the returned message carries the final (possibly fallback)
// answer.
func (m Model) ask(question string) tea.Cmd {
	piper, deltas := m.piper, m.deltas
	return func() tea.Msg {
		answer := piper.Pipe(context.Background(), rag.PipeRequest{
			UserMessage: question,
			OnDelta:     func(delta string) { deltas <- delta },
		})
		return answerMsg(answer)
	}
}

func (m Model) nextDelta() tea.Cmd {
	deltas := m.deltas
	return func() tea.Msg {
		return deltaMsg(<-deltas)
	}
}

func (m *Model) refresh() {
	content := strings.Join(m.transcript, "\n")
	if m.partial != "" {
		content += "\n" + m.partial
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}
