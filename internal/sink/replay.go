package sink

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// ReplayTranscript replays transcript rows from r to writer. A speed >0
// accelerates playback; if speed <= 0, no artificial delay is inserted.
func ReplayTranscript(r io.Reader, writer TranscriptWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var row TranscriptRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := row.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.WriteLine(row); err != nil {
			return err
		}
		prev = row.Timestamp
	}
}

// ReplayTranscriptFile opens a file and replays its transcript rows.
func ReplayTranscriptFile(path string, writer TranscriptWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayTranscript(f, writer, speed)
}
