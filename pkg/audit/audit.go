// Package audit appends and reads the immutable audit trail.
// Every mutation of the ledger relations records an event here; events are
// never updated or deleted.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/db"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

// Execer is the subset of database/sql execution shared by *sql.Tx and
// *db.Connection. Passing the caller's open transaction makes the audit event
// atomic with the write it describes.
type Execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// Recorder writes audit events on behalf of one run.
type Recorder struct {
	conn  *db.Connection
	actor string
	runID string
}

// NewRecorder creates a Recorder. actor names the operator (or SYSTEM);
// runID identifies the CLI invocation and is stamped on every event.
func NewRecorder(conn *db.Connection, actor, runID string) *Recorder {
	return &Recorder{conn: conn, actor: actor, runID: runID}
}

// Record appends one audit event. When exec is an open *sql.Tx the event
// commits or rolls back together with the triggering write; pass nil to
// record outside any transaction. A failure here must fail the triggering
// operation as a whole.
func (r *Recorder) Record(exec Execer, eventType, tableName, recordID, description string) error {
	if exec == nil {
		exec = r.conn
	}

	query := `
		INSERT INTO audit_log (event_type, table_name, record_id, description, user_name, run_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := exec.Exec(query, eventType, tableName, recordID, description, r.actor, r.runID)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}

	return nil
}

// Query returns up to limit audit events recorded at or after since,
// newest first. A zero since returns the most recent events overall.
func (r *Recorder) Query(since time.Time, limit int) ([]model.AuditEvent, error) {
	query := `
		SELECT audit_id, event_timestamp, event_type,
		       COALESCE(table_name, ''), COALESCE(record_id, ''),
		       COALESCE(description, ''), COALESCE(user_name, ''), COALESCE(run_id, '')
		FROM audit_log
		WHERE event_timestamp >= ?
		ORDER BY event_timestamp DESC, audit_id DESC
		LIMIT ?
	`

	rows, err := r.conn.Query(query, since.UTC().Format("2006-01-02 15:04:05"), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var events []model.AuditEvent
	for rows.Next() {
		var event model.AuditEvent
		if err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.Type,
			&event.Table,
			&event.RecordID,
			&event.Description,
			&event.Actor,
			&event.RunID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
