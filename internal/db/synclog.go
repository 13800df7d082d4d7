package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/openclinic-tools/dhisync/internal/model"
)

// AppendSyncLog records a completed export and trims the ledger to
// the most recent model.SyncLogMax entries in the same transaction.
// Trimming never fails the append.
func AppendSyncLog(db *sql.DB, entry model.SyncLogEntry) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	if _, err := tx.Exec(
		`INSERT INTO sync_log (timestamp, period, report_name, record_count, status)
		 VALUES (?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339), entry.Period, entry.ReportName, entry.RecordCount, entry.Status,
	); err != nil {
		return fmt.Errorf("inserting sync log entry: %w", err)
	}

	if _, err := tx.Exec(
		`DELETE FROM sync_log WHERE id NOT IN (
		   SELECT id FROM sync_log ORDER BY id DESC LIMIT ?
		 )`, model.SyncLogMax,
	); err != nil {
		return fmt.Errorf("trimming sync log: %w", err)
	}

	return tx.Commit()
}

// ListSyncLog returns ledger entries newest first, optionally filtered
// by report name (empty means all).
func ListSyncLog(db *sql.DB, reportName string) ([]model.SyncLogEntry, error) {
	query := `SELECT timestamp, period, report_name, record_count, status FROM sync_log`
	args := []any{}
	if reportName != "" {
		query += ` WHERE report_name = ?`
		args = append(args, reportName)
	}
	query += ` ORDER BY id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sync log: %w", err)
	}
	defer rows.Close()

	var entries []model.SyncLogEntry
	for rows.Next() {
		var e model.SyncLogEntry
		var ts string
		if err := rows.Scan(&ts, &e.Period, &e.ReportName, &e.RecordCount, &e.Status); err != nil {
			return nil, fmt.Errorf("scanning sync log entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Timestamp = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindLastSync returns the most recent ledger entry for the given
// report, or nil if the report has never been synced. The result is
// informational only; nothing prevents a duplicate export.
func FindLastSync(db *sql.DB, reportName string) (*model.SyncLogEntry, error) {
	var e model.SyncLogEntry
	var ts string
	err := db.QueryRow(
		`SELECT timestamp, period, report_name, record_count, status
		 FROM sync_log WHERE report_name = ? ORDER BY id DESC LIMIT 1`,
		reportName,
	).Scan(&ts, &e.Period, &e.ReportName, &e.RecordCount, &e.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding last sync for %q: %w", reportName, err)
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		e.Timestamp = t
	}
	return &e, nil
}
