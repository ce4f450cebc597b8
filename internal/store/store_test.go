package store

import (
	"testing"
	"time"

	"cyberrange-sim/internal/game"
)

func homePrompts() map[game.Team]game.Prompt {
	return map[game.Team]game.Prompt{
		game.TeamRed:  {User: "operador", Host: "kali-red", Dir: "~"},
		game.TeamBlue: {User: "analista", Host: "soc-blue", Dir: "~"},
	}
}

func TestSessionStore_CreateIsIdempotent(t *testing.T) {
	s := NewSessionStore()
	s.Create("s1", homePrompts())

	if _, err := s.Merge("s1", game.Delta{FirewallEnabled: game.Bool(true)}, time.Now()); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// Re-creating must not reset accumulated state.
	s.Create("s1", homePrompts())
	st, err := s.State("s1")
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if !st.FirewallEnabled {
		t.Errorf("Recreate must not reset state")
	}
}

func TestSessionStore_UnknownSessionErrors(t *testing.T) {
	s := NewSessionStore()
	if _, err := s.State("nope"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := s.Merge("nope", game.Delta{}, time.Now()); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := s.AppendLines("nope", game.TeamRed, nil); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_PromptRoundTrip(t *testing.T) {
	s := NewSessionStore()
	s.Create("s1", homePrompts())

	p := game.Prompt{User: "root", Host: "BOVEDA-WEB", Dir: "#"}
	if err := s.SetPrompt("s1", game.TeamRed, p); err != nil {
		t.Fatalf("SetPrompt failed: %v", err)
	}
	got, err := s.Prompt("s1", game.TeamRed)
	if err != nil {
		t.Fatalf("Prompt failed: %v", err)
	}
	if got != p {
		t.Errorf("Expected %+v, got %+v", p, got)
	}

	// Blue's prompt is untouched.
	blue, _ := s.Prompt("s1", game.TeamBlue)
	if blue.Host != "soc-blue" {
		t.Errorf("Blue prompt changed unexpectedly: %+v", blue)
	}
}

func TestSessionStore_BufferAppendClearAndCopy(t *testing.T) {
	s := NewSessionStore()
	s.Create("s1", homePrompts())

	lines := []game.Line{game.Output("one"), game.Output("two")}
	if err := s.AppendLines("s1", game.TeamRed, lines); err != nil {
		t.Fatalf("AppendLines failed: %v", err)
	}

	buf, err := s.Buffer("s1", game.TeamRed)
	if err != nil || len(buf) != 2 {
		t.Fatalf("Expected 2 buffered lines, got %d (err %v)", len(buf), err)
	}

	// Mutating the returned slice must not affect the store.
	buf[0].Text = "mutated"
	again, _ := s.Buffer("s1", game.TeamRed)
	if again[0].Text != "one" {
		t.Errorf("Buffer must return a copy")
	}

	if err := s.ClearBuffer("s1", game.TeamRed); err != nil {
		t.Fatalf("ClearBuffer failed: %v", err)
	}
	cleared, _ := s.Buffer("s1", game.TeamRed)
	if len(cleared) != 0 {
		t.Errorf("Expected empty buffer after clear, got %d lines", len(cleared))
	}
}

func TestEventLog_VisibilityFiltering(t *testing.T) {
	l := NewEventLog()
	l.Append(game.LogEntry{SessionID: "s1", Source: game.SourceNetwork, Message: "ids", Visibility: game.VisBlue})
	l.Append(game.LogEntry{SessionID: "s1", Source: game.SourceRed, Message: "staged", Visibility: game.VisRed})
	l.Append(game.LogEntry{SessionID: "s1", Source: game.SourceSystem, Message: "critical", Visibility: game.VisAll})

	blue := l.List("s1", game.TeamBlue, false)
	if len(blue) != 2 {
		t.Errorf("Blue must see blue and all entries, got %d", len(blue))
	}
	red := l.List("s1", game.TeamRed, false)
	if len(red) != 2 {
		t.Errorf("Red must see red and all entries, got %d", len(red))
	}
	admin := l.List("s1", "", true)
	if len(admin) != 3 {
		t.Errorf("Admin reads unfiltered, got %d", len(admin))
	}
}

func TestEventLog_AssignsIDsAndKeepsOrder(t *testing.T) {
	l := NewEventLog()
	first := l.Append(game.LogEntry{SessionID: "s1", Message: "a", Visibility: game.VisAll})
	second := l.Append(game.LogEntry{SessionID: "s1", Message: "b", Visibility: game.VisAll})

	if first.ID == "" || second.ID == "" || first.ID == second.ID {
		t.Errorf("Entries must get unique ids")
	}

	got := l.List("s1", "", true)
	if len(got) != 2 || got[0].Message != "a" || got[1].Message != "b" {
		t.Errorf("Entries must keep insertion order, got %+v", got)
	}
}
