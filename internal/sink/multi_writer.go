package sink

import "cyberrange-sim/internal/game"

// MultiWriter fans audit and transcript rows out to multiple writers.
type MultiWriter struct {
	eventWriters []EventWriter
	transWriters []TranscriptWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ews []EventWriter, tws []TranscriptWriter) *MultiWriter {
	return &MultiWriter{eventWriters: ews, transWriters: tws}
}

// WriteEvent sends an audit entry to all event writers.
func (mw *MultiWriter) WriteEvent(e game.LogEntry) error {
	for _, w := range mw.eventWriters {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple audit entries to all event writers, using batch
// mode where supported.
func (mw *MultiWriter) WriteEvents(entries []game.LogEntry) error {
	for _, w := range mw.eventWriters {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(entries); err != nil {
				return err
			}
			continue
		}
		for _, e := range entries {
			if err := w.WriteEvent(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteLine sends a transcript row to all transcript writers.
func (mw *MultiWriter) WriteLine(row TranscriptRow) error {
	for _, w := range mw.transWriters {
		if err := w.WriteLine(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteLines sends multiple transcript rows to all transcript writers, using
// batch mode where supported.
func (mw *MultiWriter) WriteLines(rows []TranscriptRow) error {
	for _, w := range mw.transWriters {
		if bw, ok := w.(batchTranscriptWriter); ok {
			if err := bw.WriteLines(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteLine(r); err != nil {
				return err
			}
		}
	}
	return nil
}
