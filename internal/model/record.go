package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is one scalar value in a result row. Null distinguishes SQL
// NULL from an empty string.
type Cell struct {
	Raw  any  `json:"value"`
	Null bool `json:"null,omitempty"`
}

// Text returns the stringified, trimmed form of the cell value.
// A NULL cell stringifies to the empty string.
func (c Cell) Text() string {
	if c.Null || c.Raw == nil {
		return ""
	}
	switch v := c.Raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Empty reports whether the cell is NULL or trims to an empty string.
func (c Cell) Empty() bool {
	return c.Text() == ""
}

// ResultRow is an ordered mapping from column name to a scalar value,
// produced by query execution. Column order is preserved so that
// rendered tables match the query's select list.
type ResultRow struct {
	columns []string
	cells   map[string]Cell
}

// NewResultRow returns an empty row.
func NewResultRow() *ResultRow {
	return &ResultRow{cells: make(map[string]Cell)}
}

// Set appends a column value. Setting an existing column overwrites
// its value without changing column order.
func (r *ResultRow) Set(column string, value any) {
	if _, ok := r.cells[column]; !ok {
		r.columns = append(r.columns, column)
	}
	if value == nil {
		r.cells[column] = Cell{Null: true}
		return
	}
	r.cells[column] = Cell{Raw: value}
}

// Lookup returns the cell for the given column and whether it exists.
func (r *ResultRow) Lookup(column string) (Cell, bool) {
	c, ok := r.cells[column]
	return c, ok
}

// Columns returns the column names in select-list order.
func (r *ResultRow) Columns() []string {
	return r.columns
}

// MarshalMap returns the row as a plain column->text map for JSON
// output. NULL cells are emitted as nil.
func (r *ResultRow) MarshalMap() map[string]any {
	m := make(map[string]any, len(r.columns))
	for _, col := range r.columns {
		c := r.cells[col]
		if c.Null {
			m[col] = nil
			continue
		}
		m[col] = c.Text()
	}
	return m
}

// ExportRecord is one key/value/metadata unit sent to the DHIS2
// dataValueSets endpoint. Value is always a string.
type ExportRecord struct {
	ExportField  string `json:"dataElement"`
	CategoryCode string `json:"categoryOptionCombo"`
	OrgUnit      string `json:"orgUnit"`
	Period       string `json:"period"`
	Value        string `json:"value"`
}

// ExportBatch is the set of records produced by one mapping pass.
// A batch with zero records is invalid for submission.
type ExportBatch struct {
	Records []ExportRecord `json:"dataValues"`
}

// Empty reports whether the batch contains no records.
func (b *ExportBatch) Empty() bool {
	return b == nil || len(b.Records) == 0
}
