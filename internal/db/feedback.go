package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/openclinic-tools/dhisync/internal/model"
)

// SubmitResult reports the outcome of a feedback submission.
type SubmitResult struct {
	ID      int                  `json:"id"`
	Status  model.FeedbackStatus `json:"status"`
	Existed bool                 `json:"existed"`
}

// SubmitFeedback inserts a new pending feedback record, unless a
// record with the same (question, query_text) pair already exists, in
// which case the existing record's id and status are returned with
// Existed set. Equality is exact string equality, not normalized.
func SubmitFeedback(db *sql.DB, question, queryText, reportName string) (*SubmitResult, error) {
	var id int
	var status string
	err := db.QueryRow(
		`SELECT id, status FROM feedback_loop WHERE question = ? AND query_text = ? LIMIT 1`,
		question, queryText,
	).Scan(&id, &status)
	switch {
	case err == nil:
		return &SubmitResult{ID: id, Status: model.FeedbackStatus(status), Existed: true}, nil
	case err != sql.ErrNoRows:
		return nil, fmt.Errorf("checking for existing feedback: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.Exec(
		`INSERT INTO feedback_loop (question, query_text, report_name, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		question, queryText, reportName, string(model.FeedbackPending), now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting feedback: %w", err)
	}

	id64, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting last insert id: %w", err)
	}

	return &SubmitResult{ID: int(id64), Status: model.FeedbackPending}, nil
}

// ApproveFeedback transitions a record to approved. Approving an
// already-approved record, or a nonexistent id, succeeds without effect.
func ApproveFeedback(db *sql.DB, id int) error {
	_, err := db.Exec(
		`UPDATE feedback_loop SET status = ? WHERE id = ?`,
		string(model.FeedbackApproved), id,
	)
	if err != nil {
		return fmt.Errorf("approving feedback %d: %w", id, err)
	}
	return nil
}

// DeleteFeedback removes a record permanently. Deleting a nonexistent
// id succeeds without effect.
func DeleteFeedback(db *sql.DB, id int) error {
	if _, err := db.Exec(`DELETE FROM feedback_loop WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting feedback %d: %w", id, err)
	}
	return nil
}

// ListApprovedExamples returns up to limit most recently created
// approved records, most-recent-first, as (question, query) pairs.
// Pending and rejected records are never surfaced here.
func ListApprovedExamples(db *sql.DB, limit int) ([]model.FeedbackExample, error) {
	rows, err := db.Query(
		`SELECT question, query_text FROM feedback_loop
		 WHERE status = ? ORDER BY id DESC LIMIT ?`,
		string(model.FeedbackApproved), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing approved examples: %w", err)
	}
	defer rows.Close()

	var examples []model.FeedbackExample
	for rows.Next() {
		var ex model.FeedbackExample
		if err := rows.Scan(&ex.Question, &ex.QueryText); err != nil {
			return nil, fmt.Errorf("scanning example: %w", err)
		}
		examples = append(examples, ex)
	}
	return examples, rows.Err()
}

// ListFeedback returns all feedback records, newest first, optionally
// filtered by status (empty means all).
func ListFeedback(db *sql.DB, status model.FeedbackStatus) ([]*model.FeedbackRecord, error) {
	query := `SELECT id, question, query_text, COALESCE(report_name, ''), status, created_at
	          FROM feedback_loop`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var records []*model.FeedbackRecord
	for rows.Next() {
		rec := &model.FeedbackRecord{}
		var created string
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.QueryText, &rec.ReportName, &rec.Status, &created); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetFeedback returns a single record by id, or ErrNotFound.
func GetFeedback(db *sql.DB, id int) (*model.FeedbackRecord, error) {
	rec := &model.FeedbackRecord{}
	var created string
	err := db.QueryRow(
		`SELECT id, question, query_text, COALESCE(report_name, ''), status, created_at
		 FROM feedback_loop WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Question, &rec.QueryText, &rec.ReportName, &rec.Status, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading feedback %d: %w", id, err)
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}
