package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cyberrange-sim/internal/bus"
	"cyberrange-sim/internal/config"
	"cyberrange-sim/internal/engine"
	"cyberrange-sim/internal/game"
	"cyberrange-sim/internal/sink"
	"cyberrange-sim/internal/store"
)

// fakeClock queues deferred functions so tests fire them deterministically.
type fakeClock struct {
	now    time.Time
	timers []fakeTimer
}

type fakeTimer struct {
	delay time.Duration
	fn    func()
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) {
	c.timers = append(c.timers, fakeTimer{delay: d, fn: f})
}

func (c *fakeClock) fire(t *testing.T) {
	t.Helper()
	if len(c.timers) == 0 {
		t.Fatalf("No deferred effect scheduled")
	}
	timer := c.timers[0]
	c.timers = c.timers[1:]
	c.now = c.now.Add(timer.delay)
	timer.fn()
}

type mockAudit struct {
	entries []game.LogEntry
}

func (m *mockAudit) WriteEvent(e game.LogEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

type mockTranscript struct {
	rows []sink.TranscriptRow
}

func (m *mockTranscript) WriteLine(row sink.TranscriptRow) error {
	m.rows = append(m.rows, row)
	return nil
}

type fixture struct {
	rt         *Runtime
	bus        *bus.Bus
	clock      *fakeClock
	audit      *mockAudit
	transcript *mockTranscript
	sessionID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	audit := &mockAudit{}
	transcript := &mockTranscript{}
	b := bus.New()
	rt := NewRuntime(engine.New(config.Default()), store.NewSessionStore(), store.NewEventLog(), b, audit, transcript, clock)
	id := rt.CreateSession("exercise-1")
	return &fixture{rt: rt, bus: b, clock: clock, audit: audit, transcript: transcript, sessionID: id}
}

func drain(ch <-chan bus.Delta) []bus.Delta {
	var out []bus.Delta
	for {
		select {
		case d := <-ch:
			out = append(out, d)
		default:
			return out
		}
	}
}

func TestCreateSession_SetsHomePrompts(t *testing.T) {
	f := newFixture(t)
	snap, err := f.rt.Snapshot(f.sessionID)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Prompts[game.TeamRed].Host != "kali-red" {
		t.Errorf("Red home prompt wrong: %+v", snap.Prompts[game.TeamRed])
	}
	if snap.Prompts[game.TeamBlue].Host != "soc-blue" {
		t.Errorf("Blue home prompt wrong: %+v", snap.Prompts[game.TeamBlue])
	}
	if snap.State.DBConfigPermissions != game.PermsLax {
		t.Errorf("Fresh session must start with lax permissions")
	}
}

func TestCreateSession_GeneratesID(t *testing.T) {
	f := newFixture(t)
	id := f.rt.CreateSession("")
	if id == "" || id == f.sessionID {
		t.Errorf("Expected a fresh generated id, got %q", id)
	}
}

func TestSubmit_AuthorizationRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.rt.Submit(ctx, f.sessionID, "c1", Identity{Team: "purple"}, "help"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Invalid team must be rejected, got %v", err)
	}
	if _, err := f.rt.Submit(ctx, f.sessionID, "c1", Identity{Team: game.TeamRed, Spectator: true}, "help"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Spectator without control must be rejected, got %v", err)
	}
	if _, err := f.rt.Submit(ctx, f.sessionID, "c1", Identity{Team: game.TeamRed, Spectator: true, Control: true}, "help"); err != nil {
		t.Errorf("Spectator with control may drive, got %v", err)
	}
	if _, err := f.rt.Submit(ctx, "ghost", "c1", Identity{Team: game.TeamRed}, "help"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Unknown session must report not found, got %v", err)
	}
}

func TestSubmit_EchoesPromptAndCommand(t *testing.T) {
	f := newFixture(t)

	lines, err := f.rt.Submit(context.Background(), f.sessionID, "c1", Identity{Team: game.TeamRed}, "help")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(lines) < 3 {
		t.Fatalf("Expected prompt, echo, and output, got %d lines", len(lines))
	}
	if lines[0].Kind != game.LinePrompt || !strings.Contains(lines[0].Text, "operador@kali-red") {
		t.Errorf("First line must be the prompt, got %+v", lines[0])
	}
	if lines[1].Kind != game.LineCommand || lines[1].Text != "help" {
		t.Errorf("Second line must echo the command, got %+v", lines[1])
	}

	buf, _ := f.rt.Snapshot(f.sessionID)
	if len(buf.Buffers[game.TeamRed]) != len(lines) {
		t.Errorf("Buffer must hold exactly the returned lines")
	}
}

func TestSubmit_ReplicatesToOthersNotSelf(t *testing.T) {
	f := newFixture(t)
	self := f.bus.Subscribe(f.sessionID, "c1")
	other := f.bus.Subscribe(f.sessionID, "c2")

	if _, err := f.rt.Submit(context.Background(), f.sessionID, "c1", Identity{Team: game.TeamRed}, "hydra PORTAL-RRHH"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	otherDeltas := drain(other)
	if len(otherDeltas) != 2 {
		t.Fatalf("Expected append and state deltas for others, got %d", len(otherDeltas))
	}
	if otherDeltas[0].Kind != bus.KindAppend || otherDeltas[1].Kind != bus.KindState {
		t.Errorf("Expected append then state, got %s then %s", otherDeltas[0].Kind, otherDeltas[1].Kind)
	}
	if !otherDeltas[1].State.AdminPasswordFound {
		t.Errorf("State delta must carry the merged state")
	}

	selfDeltas := drain(self)
	// The state broadcast has no origin; only the append echo is suppressed.
	if len(selfDeltas) != 1 || selfDeltas[0].Kind != bus.KindState {
		t.Errorf("Originator must receive only the state delta, got %+v", selfDeltas)
	}
}

func TestSubmit_ClearWipesBufferAndBroadcasts(t *testing.T) {
	f := newFixture(t)
	if _, err := f.rt.Submit(context.Background(), f.sessionID, "c1", Identity{Team: game.TeamBlue}, "help"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	other := f.bus.Subscribe(f.sessionID, "c2")
	lines, err := f.rt.Submit(context.Background(), f.sessionID, "c1", Identity{Team: game.TeamBlue}, "clear")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if lines != nil {
		t.Errorf("Clear returns no lines, got %+v", lines)
	}

	snap, _ := f.rt.Snapshot(f.sessionID)
	if len(snap.Buffers[game.TeamBlue]) != 0 {
		t.Errorf("Blue buffer must be wiped")
	}

	deltas := drain(other)
	if len(deltas) != 1 || deltas[0].Kind != bus.KindClear || deltas[0].Team != game.TeamBlue {
		t.Errorf("Expected one clear delta for blue, got %+v", deltas)
	}
}

func TestSubmit_DeferredEffectFiresOnClock(t *testing.T) {
	f := newFixture(t)
	self := f.bus.Subscribe(f.sessionID, "c1")

	lines, err := f.rt.Submit(context.Background(), f.sessionID, "c1", Identity{Team: game.TeamRed}, "nmap BOVEDA-WEB")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !strings.Contains(lines[len(lines)-1].Text, "Starting Nmap") {
		t.Errorf("Immediate output must end with the scan start line")
	}
	if len(f.clock.timers) != 1 {
		t.Fatalf("Expected one scheduled timer, got %d", len(f.clock.timers))
	}
	if f.clock.timers[0].delay != 2500*time.Millisecond {
		t.Errorf("Expected the scenario scan delay, got %v", f.clock.timers[0].delay)
	}

	drain(self)
	f.clock.fire(t)

	// The deferred report is published without an origin so the scanning
	// client receives it over the bus like everyone else.
	deltas := drain(self)
	found := false
	for _, d := range deltas {
		if d.Kind == bus.KindAppend {
			for _, ln := range d.Lines {
				if strings.Contains(ln.Text, "Nmap scan report") {
					found = true
				}
			}
		}
	}
	if !found {
		t.Errorf("Deferred scan report must reach the originator, got %+v", deltas)
	}

	snap, _ := f.rt.Snapshot(f.sessionID)
	joined := ""
	for _, ln := range snap.Buffers[game.TeamRed] {
		joined += ln.Text + "\n"
	}
	if !strings.Contains(joined, "Nmap scan report") {
		t.Errorf("Deferred lines must land in the red buffer")
	}
}

func TestSubmit_PromptTransitionPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.rt.Submit(ctx, f.sessionID, "c1", Identity{Team: game.TeamRed}, "ssh root@BOVEDA-WEB"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	snap, _ := f.rt.Snapshot(f.sessionID)
	if snap.Prompts[game.TeamRed].Host != "BOVEDA-WEB" || snap.Prompts[game.TeamRed].User != "root" {
		t.Errorf("Red prompt must move to the vault, got %+v", snap.Prompts[game.TeamRed])
	}

	if _, err := f.rt.Submit(ctx, f.sessionID, "c1", Identity{Team: game.TeamRed}, "exit"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	snap, _ = f.rt.Snapshot(f.sessionID)
	if snap.Prompts[game.TeamRed].Host != "kali-red" {
		t.Errorf("Exit must restore the home prompt, got %+v", snap.Prompts[game.TeamRed])
	}
}

func TestSubmit_LogsAndSinksCaptureEffects(t *testing.T) {
	f := newFixture(t)

	if _, err := f.rt.Submit(context.Background(), f.sessionID, "c1", Identity{Team: game.TeamRed}, "hydra PORTAL-RRHH"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	blue := f.rt.Events(f.sessionID, game.TeamBlue, false)
	if len(blue) != 1 || !strings.Contains(blue[0].Message, "password cracked") {
		t.Errorf("Blue must see the all-visible crack log, got %+v", blue)
	}

	if len(f.audit.entries) != 1 {
		t.Errorf("Audit sink must capture the log entry, got %d", len(f.audit.entries))
	}
	if len(f.transcript.rows) == 0 {
		t.Errorf("Transcript sink must capture the terminal lines")
	}
	for _, row := range f.transcript.rows {
		if row.SessionID != f.sessionID || row.Team != game.TeamRed {
			t.Errorf("Transcript row mislabeled: %+v", row)
		}
	}
}

func TestSubmit_SharedStateCrossesTeams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Blue hardens sshd on the vault.
	if _, err := f.rt.Submit(ctx, f.sessionID, "b1", Identity{Team: game.TeamBlue}, "ssh root@BOVEDA-WEB"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := f.rt.Submit(ctx, f.sessionID, "b1", Identity{Team: game.TeamBlue}, "nano /etc/ssh/sshd_config"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Red's brute force now fails.
	lines, err := f.rt.Submit(ctx, f.sessionID, "r1", Identity{Team: game.TeamRed}, "hydra BOVEDA-WEB")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	joined := ""
	for _, ln := range lines {
		joined += ln.Text + "\n"
	}
	if !strings.Contains(joined, "0 valid passwords found") {
		t.Errorf("Hardened vault must defeat the brute force, got:\n%s", joined)
	}
}
