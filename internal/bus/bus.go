// Per-session replication bus with self-echo suppression
package bus

import (
	"sync"
	"time"

	"cyberrange-sim/internal/game"
)

// Kind tags the payload of a replicated delta.
type Kind string

// Delta kinds.
const (
	KindAppend Kind = "append"
	KindClear  Kind = "clear"
	KindState  Kind = "state"
)

// Delta is one replicated terminal or state change. Origin carries the
// opaque connection id of the publisher so its own echo is suppressed; an
// empty origin broadcasts to every subscriber (deferred effects).
type Delta struct {
	SessionID string       `json:"session_id"`
	Origin    string       `json:"origin,omitempty"`
	Kind      Kind         `json:"kind"`
	Team      game.Team    `json:"team,omitempty"`
	Lines     []game.Line  `json:"lines,omitempty"`
	Prompt    *game.Prompt `json:"prompt,omitempty"`
	State     *game.State  `json:"state,omitempty"`
	Timestamp time.Time    `json:"ts"`
}

const subscriberBuffer = 64

// Bus is an in-process named-topic broadcast primitive. Delivery is
// best-effort and at-most-once: there is no backlog, and a slow subscriber
// drops deltas rather than blocking the publisher. Late joiners recover via
// a full snapshot fetch, not via the bus.
type Bus struct {
	mu       sync.RWMutex
	sessions map[string]map[string]chan Delta
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{sessions: make(map[string]map[string]chan Delta)}
}

// Subscribe registers a connection on a session topic and returns its
// delivery channel. Resubscribing with the same id replaces the old channel.
func (b *Bus) Subscribe(sessionID, connID string) <-chan Delta {
	ch := make(chan Delta, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.sessions[sessionID]
	if !ok {
		subs = make(map[string]chan Delta)
		b.sessions[sessionID] = subs
	}
	if old, ok := subs[connID]; ok {
		close(old)
	}
	subs[connID] = ch
	return ch
}

// Unsubscribe removes a connection and closes its channel.
func (b *Bus) Unsubscribe(sessionID, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.sessions[sessionID]
	if !ok {
		return
	}
	if ch, ok := subs[connID]; ok {
		close(ch)
		delete(subs, connID)
	}
	if len(subs) == 0 {
		delete(b.sessions, sessionID)
	}
}

// Publish fans the delta out to every subscriber of the session except the
// originator. It returns the number of deliveries; full subscriber buffers
// are skipped.
func (b *Bus) Publish(d Delta) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for connID, ch := range b.sessions[d.SessionID] {
		if d.Origin != "" && connID == d.Origin {
			continue
		}
		select {
		case ch <- d:
			delivered++
		default:
		}
	}
	return delivered
}
