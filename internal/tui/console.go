// Bubbletea console for driving one team's terminal locally
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"cyberrange-sim/internal/bus"
	"cyberrange-sim/internal/game"
	"cyberrange-sim/internal/session"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	commandStyle = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	richStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type deltaMsg struct{ d bus.Delta }

type resultMsg struct {
	lines []game.Line
	err   error
}

// Console runs a bubbletea program attached to a session.
type Console struct {
	program   *tea.Program
	bus       *bus.Bus
	sessionID string
	connID    string
}

// NewConsole builds the console for one team of a session.
func NewConsole(rt *session.Runtime, b *bus.Bus, sessionID string, team game.Team) *Console {
	connID := uuid.New().String()
	m := newConsoleModel(rt, sessionID, connID, team)
	p := tea.NewProgram(m, tea.WithAltScreen())
	c := &Console{program: p, bus: b, sessionID: sessionID, connID: connID}
	go func() {
		for d := range b.Subscribe(sessionID, connID) {
			p.Send(deltaMsg{d: d})
		}
	}()
	return c
}

// Run blocks until the console exits.
func (c *Console) Run() error {
	_, err := c.program.Run()
	c.bus.Unsubscribe(c.sessionID, c.connID)
	return err
}

type consoleModel struct {
	rt        *session.Runtime
	sessionID string
	connID    string
	team      game.Team

	vp     viewport.Model
	peerVP viewport.Model
	input  textinput.Model

	lines     []game.Line
	peerLines []game.Line
	state     game.State

	width  int
	height int
	ready  bool
}

func newConsoleModel(rt *session.Runtime, sessionID, connID string, team game.Team) consoleModel {
	ti := textinput.New()
	ti.Placeholder = "type a command, help lists them"
	ti.Focus()

	m := consoleModel{
		rt:        rt,
		sessionID: sessionID,
		connID:    connID,
		team:      team,
		vp:        viewport.New(0, 0),
		peerVP:    viewport.New(0, 0),
		input:     ti,
	}
	if snap, err := rt.Snapshot(sessionID); err == nil {
		m.state = snap.State
		m.lines = snap.Buffers[team]
		m.peerLines = snap.Buffers[m.peer()]
	}
	return m
}

func (m consoleModel) peer() game.Team {
	if m.team == game.TeamRed {
		return game.TeamBlue
	}
	return game.TeamRed
}

func (m consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		half := (msg.Height - 6) / 2
		m.vp.Width = msg.Width
		m.vp.Height = half
		m.peerVP.Width = msg.Width
		m.peerVP.Height = half
		m.input.Width = msg.Width - 4
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			raw := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if raw == "" {
				return m, nil
			}
			rt, sessionID, connID, team := m.rt, m.sessionID, m.connID, m.team
			return m, func() tea.Msg {
				lines, err := rt.Submit(context.Background(), sessionID, connID,
					session.Identity{Team: team}, raw)
				return resultMsg{lines: lines, err: err}
			}
		}

	case resultMsg:
		if msg.err != nil {
			m.lines = append(m.lines, game.Errorf("%v", msg.err))
		} else if msg.lines == nil {
			// a nil result with no error is a clear
			m.lines = nil
		} else {
			m.lines = append(m.lines, msg.lines...)
		}
		m.refresh()
		return m, nil

	case deltaMsg:
		m.apply(msg.d)
		m.refresh()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *consoleModel) apply(d bus.Delta) {
	switch d.Kind {
	case bus.KindClear:
		if d.Team == m.team {
			m.lines = nil
		} else {
			m.peerLines = nil
		}
	case bus.KindAppend:
		if d.Team == m.team {
			m.lines = append(m.lines, d.Lines...)
		} else {
			m.peerLines = append(m.peerLines, d.Lines...)
		}
	case bus.KindState:
		if d.State != nil {
			m.state = *d.State
		}
	}
}

func (m *consoleModel) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(renderLines(m.lines, m.vp.Width))
	m.vp.GotoBottom()
	m.peerVP.SetContent(renderLines(m.peerLines, m.peerVP.Width))
	m.peerVP.GotoBottom()
}

func renderLines(lines []game.Line, width int) string {
	var b strings.Builder
	for _, ln := range lines {
		text := ln.Text
		if width > 0 {
			text = wordwrap.String(text, width)
		}
		switch ln.Kind {
		case game.LinePrompt:
			b.WriteString(promptStyle.Render(text))
		case game.LineCommand:
			b.WriteString(commandStyle.Render(text))
		case game.LineError:
			b.WriteString(errorStyle.Render(text))
		case game.LineRich:
			b.WriteString(richStyle.Render(text))
		default:
			b.WriteString(text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m consoleModel) statusLine() string {
	flags := []string{
		fmt.Sprintf("fw=%v", m.state.FirewallEnabled),
		fmt.Sprintf("sshd=%v", m.state.SSHHardened),
		fmt.Sprintf("perms=%s", m.state.DBConfigPermissions),
		fmt.Sprintf("dos=%v", m.state.DoSActive),
		fmt.Sprintf("payload=%v", m.state.PayloadDeployed),
		fmt.Sprintf("banned=%d", len(m.state.BannedIPs)),
	}
	return statusStyle.Render(strings.Join(flags, "  "))
}

func (m consoleModel) View() string {
	if !m.ready {
		return "starting console..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("[%s] session %s", m.team, m.sessionID)))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("[%s] live view", m.peer())))
	b.WriteString("\n")
	b.WriteString(m.peerVP.View())
	b.WriteString("\n> ")
	b.WriteString(m.input.View())
	return b.String()
}
