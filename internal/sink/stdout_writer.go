// Writer implementation printing rows to STDOUT
package sink

import (
	"encoding/json"
	"fmt"

	"cyberrange-sim/internal/game"
)

// StdoutWriter prints audit and transcript rows as JSON lines.
type StdoutWriter struct{}

// WriteEvent outputs a single audit entry.
func (w *StdoutWriter) WriteEvent(e game.LogEntry) error {
	data, _ := json.Marshal(e)
	fmt.Println(string(data))
	return nil
}

// WriteEvents outputs multiple audit entries.
func (w *StdoutWriter) WriteEvents(entries []game.LogEntry) error {
	for _, e := range entries {
		_ = w.WriteEvent(e)
	}
	return nil
}

// WriteLine outputs a single transcript row.
func (w *StdoutWriter) WriteLine(row TranscriptRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteLines outputs multiple transcript rows.
func (w *StdoutWriter) WriteLines(rows []TranscriptRow) error {
	for _, r := range rows {
		_ = w.WriteLine(r)
	}
	return nil
}
