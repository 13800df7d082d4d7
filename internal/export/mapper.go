// Package export maps query result rows to DHIS2 export records using
// the configured per-report mapping rules.
package export

import (
	"fmt"
	"os"

	"github.com/openclinic-tools/dhisync/internal/model"
)

// Mapper turns result rows into an ExportBatch. Diag receives
// non-fatal per-rule diagnostics (out-of-bounds row, missing column);
// it defaults to stderr.
type Mapper struct {
	Catalog *model.MappingCatalog
	Diag    func(format string, args ...any)
}

// New returns a Mapper over the given catalog.
func New(catalog *model.MappingCatalog) *Mapper {
	return &Mapper{
		Catalog: catalog,
		Diag: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}
}

// Map applies the report's rules in configuration order. For each
// rule the candidate rows are the single row at RowIndex when set, or
// every row when not; record order in the batch follows this
// rule-then-row iteration and is part of the contract.
//
// Skip policy per candidate: a RowIndex outside the result bounds and
// a missing source column are diagnosed and skipped; a NULL or
// empty-trimmed value is skipped silently, since the downstream API
// rejects empty values. A pass that emits zero records is a
// MappingError, never an empty success.
func (m *Mapper) Map(rows []*model.ResultRow, period, reportName string) (*model.ExportBatch, error) {
	rules := m.Catalog.RulesFor(reportName)
	if len(rules) == 0 {
		return nil, &model.MappingError{ReportName: reportName, Reason: "no mapping rules configured"}
	}

	batch := &model.ExportBatch{}
	for _, rule := range rules {
		for _, row := range m.candidates(rule, rows, reportName) {
			cell, ok := row.Lookup(rule.SourceField)
			if !ok {
				m.diag("mapping: column %q not found in results for report %q", rule.SourceField, reportName)
				continue
			}
			if cell.Empty() {
				continue
			}

			category := rule.CategoryCode
			if category == "" {
				category = model.DefaultCategoryCode
			}
			batch.Records = append(batch.Records, model.ExportRecord{
				ExportField:  rule.ExportField,
				CategoryCode: category,
				OrgUnit:      m.Catalog.OrgUnit,
				Period:       period,
				Value:        cell.Text(),
			})
		}
	}

	if batch.Empty() {
		return nil, &model.MappingError{ReportName: reportName, Reason: "no values produced"}
	}
	return batch, nil
}

// candidates resolves the rows a rule applies to.
func (m *Mapper) candidates(rule model.MappingRule, rows []*model.ResultRow, reportName string) []*model.ResultRow {
	if rule.RowIndex == nil {
		return rows
	}
	i := *rule.RowIndex
	if i < 0 || i >= len(rows) {
		m.diag("mapping: row_index %d out of bounds (%d rows) for report %q", i, len(rows), reportName)
		return nil
	}
	return rows[i : i+1]
}

func (m *Mapper) diag(format string, args ...any) {
	if m.Diag != nil {
		m.Diag(format, args...)
	}
}
