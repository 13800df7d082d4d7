package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/openclinic-tools/dhisync/internal/model"
)

// menuQuery synthesizes a constant select listing the manual report
// catalog. It touches no tables, so it works even when the clinical
// database is unreachable.
func menuQuery() string {
	parts := make([]string, 0, len(model.ManualReports))
	for _, r := range model.ManualReports {
		parts = append(parts, fmt.Sprintf("SELECT '%s' as Code, '%s' as Report", r.Code, r.Title))
	}
	return strings.Join(parts, " UNION ALL ")
}

var sqlComments = regexp.MustCompile(`(--[^\n]*)|(?s:/\*.*?\*/)`)

// manualQuery loads the template file for a report code, strips
// comments and a trailing terminator, and substitutes the date
// placeholders. A missing template yields a message-only query naming
// the code rather than an error.
func (d *Dispatcher) manualQuery(code, startDate, endDate string) string {
	data, err := os.ReadFile(filepath.Join(d.QueriesDir, code+".sql"))
	if err != nil {
		return fmt.Sprintf("SELECT 'Error: File %s.sql not found' as message", code)
	}

	sql := strings.TrimSpace(sqlComments.ReplaceAllString(strings.TrimSpace(string(data)), ""))
	sql = strings.TrimSuffix(sql, ";")
	sql = strings.ReplaceAll(sql, "{start_date}", startDate)
	sql = strings.ReplaceAll(sql, "{end_date}", endDate)
	return sql
}
