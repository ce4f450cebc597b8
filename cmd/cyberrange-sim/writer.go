package main

import (
	"os"

	"cyberrange-sim/internal/sink"
)

// newSinks sets up audit and transcript sinks based on flags and env vars.
// It returns the sinks and a cleanup function to close any resources.
func newSinks(printOnly bool, logFile string) (sink.EventWriter, sink.TranscriptWriter, func(), error) {
	cleanup := func() {}

	audit, transcript, err := baseSinks(printOnly)
	if err != nil {
		return nil, nil, nil, err
	}
	if logFile == "" {
		return audit, transcript, cleanup, nil
	}

	fw, err := sink.NewFileWriter(logFile, logFile+".transcript")
	if err != nil {
		return nil, nil, nil, err
	}
	mw := sink.NewMultiWriter(
		[]sink.EventWriter{audit, fw},
		[]sink.TranscriptWriter{transcript, fw},
	)
	cleanup = func() { fw.Close() }
	return mw, mw, cleanup, nil
}

// baseSinks chooses the underlying sinks based on printOnly flag and env vars.
func baseSinks(printOnly bool) (sink.EventWriter, sink.TranscriptWriter, error) {
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		sw := &sink.StdoutWriter{}
		return sw, sw, nil
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	eventTable := os.Getenv("RANGE_EVENT_TABLE")
	transcriptTable := os.Getenv("RANGE_TRANSCRIPT_TABLE")
	w, err := sink.NewGreptimeDBWriter(endpoint, "public", eventTable, transcriptTable)
	if err != nil {
		return nil, nil, err
	}
	return w, w, nil
}

// newTranscriptSink creates a transcript sink without audit handling.
func newTranscriptSink(printOnly bool) (sink.TranscriptWriter, error) {
	_, transcript, _, err := newSinks(printOnly, "")
	return transcript, err
}
