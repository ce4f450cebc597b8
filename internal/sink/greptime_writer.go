package sink

import (
	"context"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"cyberrange-sim/internal/game"
)

// greptimeClient is the slice of the ingester client the writer needs; tests
// substitute a mock.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter exports audit events and transcript rows to GreptimeDB
// via the ingester client.
type GreptimeDBWriter struct {
	client     greptimeClient
	eventTable string
	transTable string
}

// NewGreptimeDBWriter connects to a GreptimeDB endpoint. Table names default
// to range_events and range_transcript.
func NewGreptimeDBWriter(host, database, eventTable, transcriptTable string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if eventTable == "" {
		eventTable = "range_events"
	}
	if transcriptTable == "" {
		transcriptTable = "range_transcript"
	}
	return &GreptimeDBWriter{client: client, eventTable: eventTable, transTable: transcriptTable}, nil
}

// WriteEvent inserts a single audit entry.
func (w *GreptimeDBWriter) WriteEvent(e game.LogEntry) error {
	return w.WriteEvents([]game.LogEntry{e})
}

// WriteEvents inserts multiple audit entries.
func (w *GreptimeDBWriter) WriteEvents(entries []game.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("session_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("source", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("message", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("visibility", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	for _, e := range entries {
		if err := tbl.AddRow(e.SessionID, string(e.Source), e.Message, string(e.Visibility), e.Timestamp); err != nil {
			return err
		}
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteLine inserts a single transcript row.
func (w *GreptimeDBWriter) WriteLine(row TranscriptRow) error {
	return w.WriteLines([]TranscriptRow{row})
}

// WriteLines inserts multiple transcript rows.
func (w *GreptimeDBWriter) WriteLines(rows []TranscriptRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.transTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("session_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("team", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("kind", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("text", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, string(r.Team), string(r.Kind), r.Text, r.Timestamp); err != nil {
			return err
		}
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}
