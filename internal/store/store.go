// In-memory keyed store for session state, prompts, and terminal buffers
package store

import (
	"errors"
	"sync"
	"time"

	"cyberrange-sim/internal/game"
)

// ErrNotFound reports an unknown session or team key.
var ErrNotFound = errors.New("session not found")

type sessionRecord struct {
	state   game.State
	prompts map[game.Team]game.Prompt
	buffers map[game.Team][]game.Line
}

// SessionStore holds one mutable record per session. Merge is last-writer-wins
// per call; because the reachable mutation set is monotonic or append-only,
// concurrent writers from the two teams converge without coordination.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*sessionRecord)}
}

// Create initializes a session with its per-team home prompts. Creating an
// existing session is a no-op so reconnecting clients cannot reset state.
func (s *SessionStore) Create(sessionID string, prompts map[game.Team]game.Prompt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; ok {
		return
	}
	rec := &sessionRecord{
		state:   game.NewState(),
		prompts: make(map[game.Team]game.Prompt, len(prompts)),
		buffers: make(map[game.Team][]game.Line),
	}
	for team, p := range prompts {
		rec.prompts[team] = p
	}
	s.sessions[sessionID] = rec
}

// Sessions lists the known session ids.
func (s *SessionStore) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// State returns the current shared state of a session.
func (s *SessionStore) State(sessionID string) (game.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return game.State{}, ErrNotFound
	}
	return rec.state, nil
}

// Merge overlays a partial delta onto the stored record, stamps LastUpdated
// with now, and returns the merged state.
func (s *SessionStore) Merge(sessionID string, d game.Delta, now time.Time) (game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return game.State{}, ErrNotFound
	}
	rec.state = rec.state.Apply(d, now)
	return rec.state, nil
}

// Prompt returns a team's current prompt.
func (s *SessionStore) Prompt(sessionID string, team game.Team) (game.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return game.Prompt{}, ErrNotFound
	}
	p, ok := rec.prompts[team]
	if !ok {
		return game.Prompt{}, ErrNotFound
	}
	return p, nil
}

// SetPrompt replaces a team's prompt after a successful ssh or exit.
func (s *SessionStore) SetPrompt(sessionID string, team game.Team, p game.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	rec.prompts[team] = p
	return nil
}

// AppendLines appends to a team's terminal buffer.
func (s *SessionStore) AppendLines(sessionID string, team game.Team, lines []game.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	rec.buffers[team] = append(rec.buffers[team], lines...)
	return nil
}

// ClearBuffer wholesale-resets a team's terminal buffer.
func (s *SessionStore) ClearBuffer(sessionID string, team game.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	rec.buffers[team] = nil
	return nil
}

// Buffer returns a copy of a team's terminal buffer, the snapshot source for
// late joiners that missed earlier bus deltas.
func (s *SessionStore) Buffer(sessionID string, team game.Team) ([]game.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]game.Line, len(rec.buffers[team]))
	copy(buf, rec.buffers[team])
	return buf, nil
}
