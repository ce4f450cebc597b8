package store

import (
	"sync"

	"github.com/google/uuid"

	"cyberrange-sim/internal/game"
)

// EventLog is the append-only, visibility-tagged record list per session.
// No delete, no edit.
type EventLog struct {
	mu      sync.RWMutex
	entries map[string][]game.LogEntry
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{entries: make(map[string][]game.LogEntry)}
}

// Append stores the entry, assigning an id when the caller left it empty, and
// returns the stored value. Ordering is insertion order.
func (l *EventLog) Append(e game.LogEntry) game.LogEntry {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[e.SessionID] = append(l.entries[e.SessionID], e)
	return e
}

// List returns the entries a viewer may see. Admins and spectators read
// unfiltered; team viewers see all-visible entries plus their own scope.
func (l *EventLog) List(sessionID string, viewer game.Team, admin bool) []game.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	all := l.entries[sessionID]
	if admin {
		out := make([]game.LogEntry, len(all))
		copy(out, all)
		return out
	}
	var out []game.LogEntry
	for _, e := range all {
		if e.VisibleTo(viewer) {
			out = append(out, e)
		}
	}
	return out
}
