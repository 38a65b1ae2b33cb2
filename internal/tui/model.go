// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui is the interactive chat front end over the answer pipeline.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// AnswerPort is the TUI-facing subset of the answer pipeline.
type AnswerPort interface {
	Run(ctx context.Context, query string) types.TaskResult
}

type exchange struct {
	question string
	answer   string
	failed   bool
}

// answerMsg delivers a finished pipeline run back to Update.
type answerMsg struct {
	question string
	result   types.TaskResult
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	pipeline AnswerPort
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	status   string
	askedAt  time.Time
	waiting  bool
	ready    bool
}

// New creates a chat model over the given pipeline.
func New(pipeline AnswerPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about Red Dead Redemption 2 and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{pipeline: pipeline, input: ti, viewport: vp, status: "Ready. Type a question."}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around chat and query boxes
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, query frame, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ch)
		m.viewport.SetContent(m.renderHistory())
		return m, nil
	case answerMsg:
		m.waiting = false
		ex := exchange{question: msg.question, answer: msg.result.Content, failed: !msg.result.Success}
		if !msg.result.Success {
			ex.answer = "Something went wrong: " + msg.result.ErrorMessage
		}
		m.history = append(m.history, ex)
		m.status = fmt.Sprintf("Answered in %.1fs", time.Since(m.askedAt).Seconds())
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.waiting {
				m.waiting = true
				m.askedAt = time.Now()
				m.status = "Thinking..."
				m.input.SetValue("")
				return m, ask(m.pipeline, q)
			}
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("RDR2 Answer Engine")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "No questions asked yet."
	}
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + ex.question))
		b.WriteString("\n\n")
		if ex.failed {
			b.WriteString(errorStyle.Render(ex.answer))
		} else {
			b.WriteString(ex.answer)
		}
	}
	return b.String()
}

// ask runs the pipeline off the UI goroutine and reports back.
func ask(pipeline AnswerPort, query string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{question: query, result: pipeline.Run(context.Background(), query)}
	}
}

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
