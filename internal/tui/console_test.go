package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"cyberrange-sim/internal/bus"
	"cyberrange-sim/internal/config"
	"cyberrange-sim/internal/engine"
	"cyberrange-sim/internal/game"
	"cyberrange-sim/internal/session"
	"cyberrange-sim/internal/store"
)

func newTestModel(t *testing.T) consoleModel {
	t.Helper()
	b := bus.New()
	rt := session.NewRuntime(engine.New(config.Default()), store.NewSessionStore(), store.NewEventLog(), b, nil, nil, nil)
	id := rt.CreateSession("console-test")
	m := newConsoleModel(rt, id, "conn-tui", game.TeamRed)

	sized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return sized.(consoleModel)
}

func TestConsoleSubmitRoundTrip(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("help")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(consoleModel)
	if cmd == nil {
		t.Fatalf("Enter must produce a submit command")
	}

	msg := cmd()
	res, ok := msg.(resultMsg)
	if !ok {
		t.Fatalf("Expected resultMsg, got %T", msg)
	}
	if res.err != nil {
		t.Fatalf("Submit failed: %v", res.err)
	}

	updated, _ = m.Update(res)
	m = updated.(consoleModel)
	if len(m.lines) == 0 || m.lines[0].Kind != game.LinePrompt {
		t.Errorf("Own terminal must show the echoed submission, got %+v", m.lines)
	}
	if m.input.Value() != "" {
		t.Errorf("Input must reset after submit")
	}
}

func TestConsoleAppliesBusDeltas(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(deltaMsg{d: bus.Delta{
		Kind:  bus.KindAppend,
		Team:  game.TeamBlue,
		Lines: []game.Line{game.Output("Status: active")},
	}})
	m = updated.(consoleModel)
	if len(m.peerLines) != 1 || len(m.lines) != 0 {
		t.Errorf("Peer append must land in the peer pane")
	}

	updated, _ = m.Update(deltaMsg{d: bus.Delta{
		Kind:  bus.KindState,
		State: &game.State{FirewallEnabled: true, DBConfigPermissions: game.PermsLax},
	}})
	m = updated.(consoleModel)
	if !m.state.FirewallEnabled {
		t.Errorf("State delta must update the status view")
	}
	if !strings.Contains(m.statusLine(), "fw=true") {
		t.Errorf("Status line must reflect the firewall flag")
	}

	updated, _ = m.Update(deltaMsg{d: bus.Delta{Kind: bus.KindClear, Team: game.TeamBlue}})
	m = updated.(consoleModel)
	if len(m.peerLines) != 0 {
		t.Errorf("Peer clear must wipe the peer pane")
	}
}

func TestConsoleViewRendersPanes(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(deltaMsg{d: bus.Delta{
		Kind:  bus.KindAppend,
		Team:  game.TeamRed,
		Lines: []game.Line{game.Output("Starting Nmap")},
	}})
	m = updated.(consoleModel)

	view := m.View()
	if !strings.Contains(view, "Starting Nmap") {
		t.Errorf("View must include the terminal content")
	}
	if !strings.Contains(view, "console-test") {
		t.Errorf("View must name the session")
	}
}
