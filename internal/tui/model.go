// Package tui is the interactive chat console for one agent.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kazz187/agentconsole/internal/chat"
)

type stateMsg chat.State

type submittedMsg struct{ err error }

type Model struct {
	ctx  context.Context
	conv *chat.Conversation
	sub  string
	ch   <-chan chat.State

	input    textinput.Model
	spin     spinner.Model
	viewport viewport.Model

	width, height int
	suggestion    int
	status        string
	state         chat.State
}

func New(ctx context.Context, conv *chat.Conversation) Model {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.Placeholder = "Ask the agent something"
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(1, 1)
	vp.MouseWheelEnabled = true

	sub, ch := conv.Subscribe(16)
	m := Model{
		ctx:      ctx,
		conv:     conv,
		sub:      sub,
		ch:       ch,
		input:    ti,
		spin:     sp,
		viewport: vp,
		state:    conv.State(),
	}
	if !m.active() {
		m.input.Blur()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForState())
}

func (m Model) waitForState() tea.Cmd {
	ch := m.ch
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

func (m Model) submit(prompt string) tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		return submittedMsg{err: conv.Submit(ctx, prompt)}
	}
}

func (m Model) active() bool {
	a := m.conv.Agent()
	return a != nil && a.IsActive
}

func (m Model) inputEnabled() bool {
	return m.active() && !m.state.Pending
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = max(m.width, 1)
		m.viewport.Height = max(m.height-7, 1)
		m.input.Width = max(m.width-6, 1)
		m.refresh()
		return m, nil

	case stateMsg:
		wasPending := m.state.Pending
		m.state = chat.State(msg)
		m.refresh()
		cmds = append(cmds, m.waitForState())
		if m.state.Pending && !wasPending {
			cmds = append(cmds, m.spin.Tick)
		}

	case submittedMsg:
		m.status = ""
		if msg.err != nil && !errors.Is(msg.err, chat.ErrEmptyPrompt) {
			m.status = msg.err.Error()
		}

	case spinner.TickMsg:
		if m.state.Pending {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.conv.Unsubscribe(m.sub)
			return m, tea.Quit

		case "tab":
			suggestions := m.conv.Suggestions()
			if len(m.state.Messages) == 0 && len(suggestions) > 0 && m.inputEnabled() {
				m.input.SetValue(suggestions[m.suggestion%len(suggestions)])
				m.input.CursorEnd()
				m.suggestion++
			}
			return m, nil

		case "enter":
			v := strings.TrimSpace(m.input.Value())
			switch v {
			case "/exit", "/quit":
				m.conv.Unsubscribe(m.sub)
				return m, tea.Quit
			case "/clear":
				m.input.Reset()
				m.conv.Clear()
				m.status = ""
				return m, nil
			}
			if !m.inputEnabled() || v == "" {
				return m, nil
			}
			m.input.Reset()
			return m, m.submit(v)
		}
	}

	if m.inputEnabled() {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) refresh() {
	name := "Agent"
	if a := m.conv.Agent(); a != nil {
		name = a.Name
	}
	m.viewport.SetContent(transcript(m.state.Messages, name, max(m.viewport.Width-2, 20)))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	var b strings.Builder

	a := m.conv.Agent()
	title := "Agent Console"
	if a != nil {
		title = a.Name + " · " + string(a.Type)
	}
	b.WriteString(titleSt.Render(title))
	b.WriteString("\n")

	if !m.active() {
		b.WriteString(warnSt.Render("This agent is not active. Register it to start chatting."))
		b.WriteString("\n")
	}

	if len(m.state.Messages) == 0 {
		for _, s := range m.conv.Suggestions() {
			b.WriteString(suggestSt.Render("  " + s))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	switch {
	case m.state.Pending:
		b.WriteString(m.spin.View() + " Agent is typing…\n")
	case m.status != "":
		b.WriteString(systemSt.Render(m.status) + "\n")
	}

	b.WriteString(inputBox.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(helpSt.Render("enter send · tab suggestion · /clear · /exit · ctrl+c quit"))
	return b.String()
}

// Run blocks until the operator leaves the console or ctx is done.
func Run(ctx context.Context, conv *chat.Conversation) error {
	p := tea.NewProgram(New(ctx, conv), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
