// Session runtime orchestrating interpreter, store, log, and bus
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"cyberrange-sim/internal/bus"
	"cyberrange-sim/internal/engine"
	"cyberrange-sim/internal/game"
	"cyberrange-sim/internal/logging"
	"cyberrange-sim/internal/sink"
	"cyberrange-sim/internal/store"
)

// ErrNotAuthorized reports a submission by an identity not allowed to drive
// the team's terminal.
var ErrNotAuthorized = errors.New("identity is not authorized to submit commands")

// Identity describes the submitting connection, supplied by the external
// session collaborator and trusted as-is.
type Identity struct {
	Team      game.Team
	Spectator bool
	Control   bool // spectators may submit only when explicitly granted control
}

func (id Identity) canDrive() bool {
	return id.Team.Valid() && (!id.Spectator || id.Control)
}

// Runtime orchestrates one command submission end to end and executes
// deferred effects on its clock. Audit and transcript sinks are optional.
type Runtime struct {
	engine     *engine.Engine
	states     *store.SessionStore
	events     *store.EventLog
	bus        *bus.Bus
	audit      sink.EventWriter
	transcript sink.TranscriptWriter
	clock      Clock
}

// NewRuntime wires the runtime. A nil clock selects the wall clock.
func NewRuntime(eng *engine.Engine, states *store.SessionStore, events *store.EventLog, b *bus.Bus, audit sink.EventWriter, transcript sink.TranscriptWriter, clock Clock) *Runtime {
	if clock == nil {
		clock = realClock{}
	}
	return &Runtime{
		engine:     eng,
		states:     states,
		events:     events,
		bus:        b,
		audit:      audit,
		transcript: transcript,
		clock:      clock,
	}
}

// CreateSession initializes a session with the scenario's home prompts and
// returns its id; an empty id gets a generated one.
func (r *Runtime) CreateSession(sessionID string) string {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	cfg := r.engine.Scenario()
	r.states.Create(sessionID, map[game.Team]game.Prompt{
		game.TeamRed:  cfg.HomePrompt(game.TeamRed),
		game.TeamBlue: cfg.HomePrompt(game.TeamBlue),
	})
	return sessionID
}

// Submit handles one command submission: authorize, interpret, persist,
// replicate, and schedule deferred effects. It returns the lines appended to
// the caller's own buffer so the caller renders them without waiting for a
// bus echo.
func (r *Runtime) Submit(ctx context.Context, sessionID, connID string, ident Identity, raw string) ([]game.Line, error) {
	if !ident.canDrive() {
		return nil, ErrNotAuthorized
	}
	st, err := r.states.State(sessionID)
	if err != nil {
		return nil, err
	}
	prompt, err := r.states.Prompt(sessionID, ident.Team)
	if err != nil {
		return nil, err
	}

	res := r.engine.Eval(raw, ident.Team, st, prompt)

	if res.Clear {
		log := logging.FromContext(ctx)
		if err := r.states.ClearBuffer(sessionID, ident.Team); err != nil {
			log.Error("buffer clear failed", "session", sessionID, "err", err)
		}
		r.bus.Publish(bus.Delta{
			SessionID: sessionID,
			Origin:    connID,
			Kind:      bus.KindClear,
			Team:      ident.Team,
			Timestamp: r.clock.Now().UTC(),
		})
		return nil, nil
	}

	lines := make([]game.Line, 0, len(res.Lines)+2)
	lines = append(lines,
		game.Line{Kind: game.LinePrompt, Text: prompt.String()},
		game.Line{Kind: game.LineCommand, Text: raw},
	)
	lines = append(lines, res.Lines...)

	r.applyEffect(ctx, sessionID, connID, ident.Team, lines, res.NewPrompt, res.Delta, res.Logs)

	for _, d := range res.Deferred {
		d := d
		// Deferred output must reach the originator too, so it is published
		// without an origin and the caller receives it over the bus.
		r.clock.AfterFunc(d.Delay, func() {
			r.applyEffect(ctx, sessionID, "", ident.Team, d.Lines, nil, d.Delta, d.Logs)
		})
	}
	return lines, nil
}

// applyEffect persists one effect bundle and publishes its deltas. A store
// failure falls back to the locally computed state so the caller's own view
// never silently drops the mutation.
func (r *Runtime) applyEffect(ctx context.Context, sessionID, origin string, team game.Team, lines []game.Line, newPrompt *game.Prompt, delta *game.Delta, logs []engine.LogRequest) {
	log := logging.FromContext(ctx)
	now := r.clock.Now().UTC()

	var changed *game.State
	if delta != nil && !delta.Empty() {
		merged, err := r.states.Merge(sessionID, *delta, now)
		if err != nil {
			log.Error("state merge failed, serving optimistic local state", "session", sessionID, "err", err)
			merged = game.NewState().Apply(*delta, now)
		}
		changed = &merged
	}

	for _, lr := range logs {
		entry := r.events.Append(game.LogEntry{
			SessionID:  sessionID,
			Source:     lr.Source,
			Message:    lr.Message,
			Visibility: lr.Visibility,
			Timestamp:  now,
		})
		if r.audit != nil {
			if err := r.audit.WriteEvent(entry); err != nil {
				log.Error("audit export failed", "session", sessionID, "err", err)
			}
		}
	}

	if newPrompt != nil {
		if err := r.states.SetPrompt(sessionID, team, *newPrompt); err != nil {
			log.Error("prompt update failed", "session", sessionID, "err", err)
		}
	}

	if len(lines) > 0 {
		if err := r.states.AppendLines(sessionID, team, lines); err != nil {
			log.Error("buffer append failed", "session", sessionID, "err", err)
		}
		if r.transcript != nil {
			for _, ln := range lines {
				if err := r.transcript.WriteLine(sink.TranscriptRow{
					SessionID: sessionID,
					Team:      team,
					Kind:      ln.Kind,
					Text:      ln.Text,
					Timestamp: now,
				}); err != nil {
					log.Error("transcript export failed", "session", sessionID, "err", err)
					break
				}
			}
		}
	}

	if len(lines) > 0 || newPrompt != nil {
		r.bus.Publish(bus.Delta{
			SessionID: sessionID,
			Origin:    origin,
			Kind:      bus.KindAppend,
			Team:      team,
			Lines:     lines,
			Prompt:    newPrompt,
			Timestamp: now,
		})
	}
	if changed != nil {
		r.bus.Publish(bus.Delta{
			SessionID: sessionID,
			Kind:      bus.KindState,
			State:     changed,
			Timestamp: now,
		})
	}
}

// Snapshot is the full recovery view a late joiner fetches instead of a bus
// backlog.
type Snapshot struct {
	State   game.State                `json:"state"`
	Prompts map[game.Team]game.Prompt `json:"prompts"`
	Buffers map[game.Team][]game.Line `json:"buffers"`
}

// Snapshot assembles the current state, prompts, and buffers of a session.
func (r *Runtime) Snapshot(sessionID string) (Snapshot, error) {
	st, err := r.states.State(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		State:   st,
		Prompts: make(map[game.Team]game.Prompt, 2),
		Buffers: make(map[game.Team][]game.Line, 2),
	}
	for _, team := range []game.Team{game.TeamRed, game.TeamBlue} {
		p, err := r.states.Prompt(sessionID, team)
		if err != nil {
			return Snapshot{}, err
		}
		buf, err := r.states.Buffer(sessionID, team)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Prompts[team] = p
		snap.Buffers[team] = buf
	}
	return snap, nil
}

// Events lists the log entries visible to the viewer.
func (r *Runtime) Events(sessionID string, viewer game.Team, admin bool) []game.LogEntry {
	return r.events.List(sessionID, viewer, admin)
}
