package sink

import (
	"encoding/json"
	"os"

	"cyberrange-sim/internal/game"
)

// FileWriter writes audit events and transcript rows to JSONL files.
type FileWriter struct {
	eventFile *os.File
	transFile *os.File
	eventEnc  *json.Encoder
	transEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. Either path may be empty to skip that
// log.
func NewFileWriter(eventPath, transcriptPath string) (*FileWriter, error) {
	fw := &FileWriter{}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	if transcriptPath != "" {
		tf, err := os.Create(transcriptPath)
		if err != nil {
			if fw.eventFile != nil {
				fw.eventFile.Close()
			}
			return nil, err
		}
		fw.transFile = tf
		fw.transEnc = json.NewEncoder(tf)
	}
	return fw, nil
}

// WriteEvent logs a single audit entry, if enabled.
func (f *FileWriter) WriteEvent(e game.LogEntry) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(e)
}

// WriteEvents logs multiple audit entries.
func (f *FileWriter) WriteEvents(entries []game.LogEntry) error {
	for _, e := range entries {
		if err := f.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteLine logs a single transcript row, if enabled.
func (f *FileWriter) WriteLine(row TranscriptRow) error {
	if f.transEnc == nil {
		return nil
	}
	return f.transEnc.Encode(row)
}

// WriteLines logs multiple transcript rows.
func (f *FileWriter) WriteLines(rows []TranscriptRow) error {
	for _, r := range rows {
		if err := f.WriteLine(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.eventFile != nil {
		if e := f.eventFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.transFile != nil {
		if e := f.transFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
