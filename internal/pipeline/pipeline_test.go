package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/openclinic-tools/dhisync/internal/db"
	"github.com/openclinic-tools/dhisync/internal/dhis2"
	"github.com/openclinic-tools/dhisync/internal/dispatch"
	"github.com/openclinic-tools/dhisync/internal/export"
	"github.com/openclinic-tools/dhisync/internal/model"
	"github.com/openclinic-tools/dhisync/internal/resolve"
)

type fakeExecutor struct {
	rows  []*model.ResultRow
	err   error
	calls int
	last  string
}

func (f *fakeExecutor) Execute(_ context.Context, query string) ([]*model.ResultRow, error) {
	f.calls++
	f.last = query
	return f.rows, f.err
}

type fakePusher struct {
	result *dhis2.PushResult
	err    error
	batch  *model.ExportBatch
}

func (f *fakePusher) Push(_ context.Context, batch *model.ExportBatch) (*dhis2.PushResult, error) {
	f.batch = batch
	return f.result, f.err
}

func mustStore(t *testing.T) *sql.DB {
	t.Helper()
	store, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := db.Initialize(store); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return store
}

func testPipeline(t *testing.T, exec *fakeExecutor, pusher *fakePusher) *Pipeline {
	t.Helper()
	catalog := &model.MappingCatalog{
		OrgUnit: "OU1",
		Reports: map[string]*model.Report{
			"DailySummary": {Mappings: []model.MappingRule{
				{SourceField: "Total", ExportField: "DE_TOTAL"},
			}},
		},
	}
	mapper := export.New(catalog)
	mapper.Diag = func(format string, args ...any) { t.Logf(format, args...) }

	return &Pipeline{
		Dispatcher: dispatch.New(t.TempDir(), nil),
		Resolver:   resolve.New([]string{"VitalsReport", "DailySummary"}),
		Executor:   exec,
		Mapper:     mapper,
		Pusher:     pusher,
		Store:      mustStore(t),
		Diag:       func(format string, args ...any) { t.Logf(format, args...) },
	}
}

func totalRow(t *testing.T, v string) *model.ResultRow {
	t.Helper()
	r := model.NewResultRow()
	r.Set("Total", v)
	return r
}

func TestAskBlockedQuestionNeverExecutes(t *testing.T) {
	exec := &fakeExecutor{}
	p := testPipeline(t, exec, &fakePusher{})

	res, err := p.Ask(context.Background(), "drop the person table", "", "", true)
	var rej *model.SecurityRejection
	if !errors.As(err, &rej) {
		t.Fatalf("err = %v, want SecurityRejection", err)
	}
	if exec.calls != 0 {
		t.Errorf("executor called %d times for a blocked question", exec.calls)
	}
	if res == nil || res.Mode != dispatch.ModeBlocked {
		t.Errorf("result = %+v, want blocked mode", res)
	}
}

func TestAskWithoutExecuteReturnsSQLOnly(t *testing.T) {
	exec := &fakeExecutor{}
	p := testPipeline(t, exec, &fakePusher{})

	res, err := p.Ask(context.Background(), "total persons", "", "", false)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if res.SQL == "" {
		t.Error("SQL empty")
	}
	if exec.calls != 0 {
		t.Errorf("executor called %d times with execute=false", exec.calls)
	}
}

func TestAskValidatesBeforeExecuting(t *testing.T) {
	exec := &fakeExecutor{}
	p := testPipeline(t, exec, &fakePusher{})
	p.Dispatcher.Generator = generatorFunc(func() (string, error) {
		return "SHOW TABLES", nil
	})

	_, err := p.Ask(context.Background(), "what tables exist", "", "", true)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if exec.calls != 0 {
		t.Errorf("executor called despite validation failure")
	}
}

type generatorFunc func() (string, error)

func (f generatorFunc) GenerateSQL(context.Context, string, string, string) (string, error) {
	return f()
}

func TestAskExecutesAndResolves(t *testing.T) {
	exec := &fakeExecutor{rows: []*model.ResultRow{totalRow(t, "42")}}
	p := testPipeline(t, exec, &fakePusher{})

	res, err := p.Ask(context.Background(), "total persons", "2025-01-01", "2025-01-31", true)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if exec.calls != 1 {
		t.Errorf("executor calls = %d, want 1", exec.calls)
	}
	if res.ReportName != "DailySummary" {
		t.Errorf("report = %q, want default DailySummary", res.ReportName)
	}
	if len(res.RowMaps) != 1 || res.RowMaps[0]["Total"] != "42" {
		t.Errorf("RowMaps = %+v", res.RowMaps)
	}
	if res.LastSync != nil {
		t.Errorf("LastSync = %+v, want nil for never-synced report", res.LastSync)
	}
}

func TestAskSurfacesLastSync(t *testing.T) {
	exec := &fakeExecutor{rows: []*model.ResultRow{totalRow(t, "1")}}
	p := testPipeline(t, exec, &fakePusher{})

	if err := db.AppendSyncLog(p.Store, model.SyncLogEntry{
		Period: "202501", ReportName: "DailySummary", RecordCount: 5, Status: "success",
	}); err != nil {
		t.Fatalf("AppendSyncLog failed: %v", err)
	}

	res, err := p.Ask(context.Background(), "total persons", "", "", true)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if res.LastSync == nil || res.LastSync.Period != "202501" {
		t.Errorf("LastSync = %+v, want the recorded entry", res.LastSync)
	}
}

func TestSyncPushesAndRecords(t *testing.T) {
	pusher := &fakePusher{result: &dhis2.PushResult{Changed: 1}}
	p := testPipeline(t, &fakeExecutor{}, pusher)

	res, err := p.Sync(context.Background(), []*model.ResultRow{totalRow(t, "9")}, "2025-01", "DailySummary")
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.Changed != 1 || res.Warning {
		t.Errorf("result = %+v", res)
	}

	// The period reaching DHIS2 is digits only.
	if pusher.batch.Records[0].Period != "202501" {
		t.Errorf("period = %q, want 202501", pusher.batch.Records[0].Period)
	}

	entries, err := db.ListSyncLog(p.Store, "DailySummary")
	if err != nil {
		t.Fatalf("ListSyncLog failed: %v", err)
	}
	if len(entries) != 1 || entries[0].RecordCount != 1 {
		t.Errorf("ledger = %+v, want one entry with count 1", entries)
	}
}

func TestSyncWarningSkipsLedger(t *testing.T) {
	pusher := &fakePusher{result: &dhis2.PushResult{Changed: 0, Warning: true}}
	p := testPipeline(t, &fakeExecutor{}, pusher)

	res, err := p.Sync(context.Background(), []*model.ResultRow{totalRow(t, "9")}, "202501", "DailySummary")
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !res.Warning {
		t.Error("Warning = false for zero-change import")
	}

	entries, err := db.ListSyncLog(p.Store, "")
	if err != nil {
		t.Fatalf("ListSyncLog failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ledger = %+v, want no entries after warning", entries)
	}
}

func TestSyncMappingFailureDoesNotPush(t *testing.T) {
	pusher := &fakePusher{result: &dhis2.PushResult{Changed: 1}}
	p := testPipeline(t, &fakeExecutor{}, pusher)

	_, err := p.Sync(context.Background(), []*model.ResultRow{totalRow(t, "9")}, "202501", "UnknownReport")
	var merr *model.MappingError
	if !errors.As(err, &merr) {
		t.Fatalf("err = %v, want MappingError", err)
	}
	if pusher.batch != nil {
		t.Error("push attempted despite mapping failure")
	}
}

func TestSyncRejectsDigitlessPeriod(t *testing.T) {
	p := testPipeline(t, &fakeExecutor{}, &fakePusher{})

	_, err := p.Sync(context.Background(), []*model.ResultRow{totalRow(t, "9")}, "last month", "DailySummary")
	var merr *model.MappingError
	if !errors.As(err, &merr) {
		t.Fatalf("err = %v, want MappingError for digitless period", err)
	}
}

func TestSyncLedgerFailureIsSwallowed(t *testing.T) {
	pusher := &fakePusher{result: &dhis2.PushResult{Changed: 1}}
	p := testPipeline(t, &fakeExecutor{}, pusher)

	var diags int
	p.Diag = func(string, ...any) { diags++ }
	p.Store.Close()

	res, err := p.Sync(context.Background(), []*model.ResultRow{totalRow(t, "9")}, "202501", "DailySummary")
	if err != nil {
		t.Fatalf("Sync failed on ledger error: %v", err)
	}
	if res.Changed != 1 {
		t.Errorf("result = %+v", res)
	}
	if diags == 0 {
		t.Error("ledger failure produced no diagnostic")
	}
}

func TestCleanPeriod(t *testing.T) {
	tests := []struct{ in, want string }{
		{"202501", "202501"},
		{"2025-01", "202501"},
		{" 2025 / 01 ", "202501"},
		{"Q1", "1"},
	}
	for _, tt := range tests {
		if got := CleanPeriod(tt.in); got != tt.want {
			t.Errorf("CleanPeriod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
