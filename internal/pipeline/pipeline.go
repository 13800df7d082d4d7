// Package pipeline orchestrates the question-to-export cycle: route
// the question to query text, validate it, execute it, resolve the
// report, map rows to export records, push them, and record the sync.
// Each cycle is synchronous; the only shared state is the moderation
// queue and the ledger in the sqlite store.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/openclinic-tools/dhisync/internal/db"
	"github.com/openclinic-tools/dhisync/internal/dhis2"
	"github.com/openclinic-tools/dhisync/internal/dispatch"
	"github.com/openclinic-tools/dhisync/internal/export"
	"github.com/openclinic-tools/dhisync/internal/model"
	"github.com/openclinic-tools/dhisync/internal/resolve"
	"github.com/openclinic-tools/dhisync/internal/validate"
)

// Executor runs a validated query and returns its rows.
type Executor interface {
	Execute(ctx context.Context, query string) ([]*model.ResultRow, error)
}

// Pusher submits an export batch downstream.
type Pusher interface {
	Push(ctx context.Context, batch *model.ExportBatch) (*dhis2.PushResult, error)
}

// Pipeline wires the decision chain to the executor, the mapper, the
// push client, and the sqlite store. Store may be nil when running
// without an initialized directory; ledger and feedback features then
// degrade to no-ops.
type Pipeline struct {
	Dispatcher *dispatch.Dispatcher
	Resolver   *resolve.Resolver
	Executor   Executor
	Mapper     *export.Mapper
	Pusher     Pusher
	Store      *sql.DB

	// Diag receives non-fatal diagnostics, e.g. a ledger write that
	// failed after a successful push.
	Diag func(format string, args ...any)
}

// AskResult is the outcome of one routed, executed question.
type AskResult struct {
	Question   string              `json:"question"`
	SQL        string              `json:"sql"`
	Mode       dispatch.Mode       `json:"mode"`
	ReportName string              `json:"report"`
	Rows       []*model.ResultRow  `json:"-"`
	RowMaps    []map[string]any    `json:"data"`
	LastSync   *model.SyncLogEntry `json:"last_sync,omitempty"`
}

// Ask routes and optionally executes a question. With execute false
// the query text is returned without touching the clinical database.
// A blocked question returns SecurityRejection; validation and
// execution failures return their typed errors with the SQL preserved
// in the result for display.
func (p *Pipeline) Ask(ctx context.Context, question, startDate, endDate string, execute bool) (*AskResult, error) {
	sqlText, mode := p.Dispatcher.Dispatch(ctx, question, startDate, endDate)

	res := &AskResult{
		Question:   question,
		SQL:        sqlText,
		Mode:       mode,
		ReportName: p.Resolver.Resolve(question),
	}

	if strings.Contains(sqlText, model.SecurityMarker) {
		return res, &model.SecurityRejection{Question: question}
	}

	if !execute {
		return res, nil
	}

	if err := validate.Check(sqlText); err != nil {
		return res, err
	}

	rows, err := p.Executor.Execute(ctx, sqlText)
	if err != nil {
		return res, err
	}
	res.Rows = rows
	res.RowMaps = make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		res.RowMaps = append(res.RowMaps, row.MarshalMap())
	}

	if p.Store != nil {
		last, err := db.FindLastSync(p.Store, res.ReportName)
		if err != nil {
			p.diag("reading last sync for %q: %v", res.ReportName, err)
		} else {
			res.LastSync = last
		}
	}

	return res, nil
}

// SyncResult is the outcome of one export push.
type SyncResult struct {
	ReportName  string `json:"report"`
	Period      string `json:"period"`
	RecordCount int    `json:"count"`
	Changed     int    `json:"changed"`
	Warning     bool   `json:"warning,omitempty"`
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// CleanPeriod strips everything but digits from a period string, so
// "2025-01" and "202501" address the same DHIS2 period.
func CleanPeriod(period string) string {
	return nonDigits.ReplaceAllString(period, "")
}

// Sync maps rows to export records and pushes them. The ledger entry
// is appended only after a push that changed at least one record; a
// zero-change import is reported as a warning without a ledger write.
// Ledger write failures are diagnosed and swallowed, never failing a
// completed push.
func (p *Pipeline) Sync(ctx context.Context, rows []*model.ResultRow, period, reportName string) (*SyncResult, error) {
	cleanPeriod := CleanPeriod(period)
	if cleanPeriod == "" {
		return nil, &model.MappingError{ReportName: reportName, Reason: fmt.Sprintf("period %q contains no digits", period)}
	}

	batch, err := p.Mapper.Map(rows, cleanPeriod, reportName)
	if err != nil {
		return nil, err
	}

	pushed, err := p.Pusher.Push(ctx, batch)
	if err != nil {
		return nil, err
	}

	res := &SyncResult{
		ReportName:  reportName,
		Period:      period,
		RecordCount: len(batch.Records),
		Changed:     pushed.Changed,
		Warning:     pushed.Warning,
	}

	if pushed.Warning {
		return res, nil
	}

	if p.Store != nil {
		entry := model.SyncLogEntry{
			Period:      period,
			ReportName:  reportName,
			RecordCount: pushed.Changed,
			Status:      "success",
		}
		if err := db.AppendSyncLog(p.Store, entry); err != nil {
			p.diag("recording sync in ledger: %v", err)
		}
	}

	return res, nil
}

func (p *Pipeline) diag(format string, args ...any) {
	if p.Diag != nil {
		p.Diag(format, args...)
	}
}
