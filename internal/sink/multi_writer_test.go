package sink

import (
	"testing"

	"cyberrange-sim/internal/game"
)

// plainEventWriter has no batch support, forcing the fallback loop.
type plainEventWriter struct {
	entries []game.LogEntry
}

func (w *plainEventWriter) WriteEvent(e game.LogEntry) error {
	w.entries = append(w.entries, e)
	return nil
}

type batchedWriter struct {
	entries    []game.LogEntry
	rows       []TranscriptRow
	batchCalls int
}

func (w *batchedWriter) WriteEvent(e game.LogEntry) error {
	w.entries = append(w.entries, e)
	return nil
}

func (w *batchedWriter) WriteEvents(entries []game.LogEntry) error {
	w.batchCalls++
	w.entries = append(w.entries, entries...)
	return nil
}

func (w *batchedWriter) WriteLine(r TranscriptRow) error {
	w.rows = append(w.rows, r)
	return nil
}

func (w *batchedWriter) WriteLines(rows []TranscriptRow) error {
	w.batchCalls++
	w.rows = append(w.rows, rows...)
	return nil
}

func TestMultiWriterFansOut(t *testing.T) {
	plain := &plainEventWriter{}
	batched := &batchedWriter{}
	mw := NewMultiWriter([]EventWriter{plain, batched}, []TranscriptWriter{batched})

	entries := []game.LogEntry{{ID: "a"}, {ID: "b"}}
	if err := mw.WriteEvents(entries); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if len(plain.entries) != 2 || len(batched.entries) != 2 {
		t.Errorf("Both writers must receive every entry")
	}
	if batched.batchCalls != 1 {
		t.Errorf("Batch-capable writer must be called once, got %d calls", batched.batchCalls)
	}

	if err := mw.WriteLine(TranscriptRow{Text: "x"}); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}
	if len(batched.rows) != 1 {
		t.Errorf("Transcript row must fan out, got %d", len(batched.rows))
	}
}
