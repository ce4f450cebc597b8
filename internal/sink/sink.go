// Export writers for audit events and terminal transcripts
package sink

import (
	"time"

	"cyberrange-sim/internal/game"
)

// TranscriptRow is one exported terminal line.
type TranscriptRow struct {
	SessionID string        `json:"session_id"`
	Team      game.Team     `json:"team"`
	Kind      game.LineKind `json:"kind"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"ts"`
}

// EventWriter exports audit log entries.
type EventWriter interface {
	WriteEvent(game.LogEntry) error
}

// TranscriptWriter exports terminal transcript rows.
type TranscriptWriter interface {
	WriteLine(TranscriptRow) error
}

// Optional: event writers may support batch mode
type batchEventWriter interface {
	WriteEvents([]game.LogEntry) error
}

// Optional: transcript writers may support batch mode
type batchTranscriptWriter interface {
	WriteLines([]TranscriptRow) error
}
