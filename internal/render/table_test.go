package render

import (
	"strings"
	"testing"
	"time"

	"github.com/openclinic-tools/dhisync/internal/model"
)

func makeRow(t *testing.T, pairs ...string) *model.ResultRow {
	t.Helper()
	r := model.NewResultRow()
	for i := 0; i < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

func TestRenderRowsPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	rows := []*model.ResultRow{
		makeRow(t, "First_Name", "Amina", "Total", "12"),
		makeRow(t, "First_Name", "Joseph", "Total", "3"),
	}

	got := RenderRows(rows)
	for _, want := range []string{"First_Name", "Total", "Amina", "Joseph", "12"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	// Header row comes first.
	lines := strings.Split(got, "\n")
	if !strings.Contains(lines[0], "First_Name") {
		t.Errorf("first line = %q, want header", lines[0])
	}
}

func TestRenderRowsNullCell(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := model.NewResultRow()
	r.Set("Weight", nil)
	r.Set("Name", "Amina")

	got := RenderRows([]*model.ResultRow{r})
	if !strings.Contains(got, "Amina") {
		t.Errorf("output missing non-null cell:\n%s", got)
	}
	if strings.Contains(got, "<nil>") {
		t.Errorf("NULL cell rendered literally:\n%s", got)
	}
}

func TestRenderRowsEmpty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderRows(nil)
	if !strings.Contains(got, "No rows returned.") {
		t.Errorf("output = %q, want empty state", got)
	}
}

func TestRenderRowsTruncatesLongValues(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	long := strings.Repeat("x", 80)
	got := RenderRows([]*model.ResultRow{makeRow(t, "Notes", long)})
	if strings.Contains(got, long) {
		t.Error("long value not truncated")
	}
	if !strings.Contains(got, "...") {
		t.Error("truncated value missing ellipsis")
	}
}

func TestRenderSyncLogPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	entries := []model.SyncLogEntry{
		{
			Timestamp:   time.Now().Add(-2 * time.Hour),
			Period:      "202501",
			ReportName:  "DailySummary",
			RecordCount: 9,
			Status:      "success",
		},
	}

	got := RenderSyncLog(entries)
	for _, want := range []string{"DailySummary", "202501", "9", "success", "hours ago"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderSyncLogEmpty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderSyncLog(nil)
	if !strings.Contains(got, "No syncs recorded.") {
		t.Errorf("output = %q, want empty state", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 40, "short"},
		{"abcdef", 5, "ab..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
