package game

import "time"

// Source identifies who produced a log entry.
type Source string

// Log entry sources.
const (
	SourceRed     Source = "red"
	SourceBlue    Source = "blue"
	SourceSystem  Source = "system"
	SourceNetwork Source = "network"
)

// Visibility scopes a log entry to the teams allowed to read it, modeling the
// information asymmetry between attacker and defender.
type Visibility string

// Log visibility scopes.
const (
	VisRed  Visibility = "red"
	VisBlue Visibility = "blue"
	VisAll  Visibility = "all"
)

// LogEntry is one append-only, visibility-tagged audit record of a session.
type LogEntry struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"session_id"`
	Source     Source     `json:"source"`
	Message    string     `json:"message"`
	Visibility Visibility `json:"visibility"`
	Timestamp  time.Time  `json:"ts"`
}

// VisibleTo reports whether a reader on the given team may see the entry.
// Spectators and session admins read unfiltered and do not go through here.
func (e LogEntry) VisibleTo(team Team) bool {
	return e.Visibility == VisAll || string(e.Visibility) == string(team)
}
