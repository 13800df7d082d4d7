package model

import "fmt"

// DefaultReportName is the label used when no report can be resolved
// from a question.
const DefaultReportName = "DailySummary"

// DefaultCategoryCode is the DHIS2 default category option combo,
// used when a mapping rule does not specify one.
const DefaultCategoryCode = "HllvX50cXC0"

// MappingRule describes how one result column maps to a DHIS2 data
// element. RowIndex nil means the rule applies to every result row;
// a non-nil value restricts it to the row at that zero-based position.
type MappingRule struct {
	SourceField  string `yaml:"source_field" json:"source_field"`
	ExportField  string `yaml:"export_field" json:"export_field"`
	CategoryCode string `yaml:"category_code,omitempty" json:"category_code,omitempty"`
	RowIndex     *int   `yaml:"row_index,omitempty" json:"row_index,omitempty"`
}

// Validate returns an error if the rule is missing a required field.
func (r MappingRule) Validate() error {
	if r.SourceField == "" {
		return fmt.Errorf("source_field is required")
	}
	if r.ExportField == "" {
		return fmt.Errorf("export_field is required")
	}
	if r.RowIndex != nil && *r.RowIndex < 0 {
		return fmt.Errorf("row_index must not be negative")
	}
	return nil
}

// Report is a named, pre-configured shape describing how query result
// columns map to export fields.
type Report struct {
	Name     string        `yaml:"-" json:"name"`
	Mappings []MappingRule `yaml:"mappings" json:"mappings"`
}

// MappingCatalog is the full report-mapping configuration, loaded once
// at startup and immutable for the process lifetime.
type MappingCatalog struct {
	OrgUnit string             `yaml:"org_unit" json:"org_unit"`
	Reports map[string]*Report `yaml:"reports" json:"reports"`
}

// RulesFor returns the mapping rules configured for the given report
// name, or nil if the report is unknown.
func (c *MappingCatalog) RulesFor(name string) []MappingRule {
	if c == nil || c.Reports == nil {
		return nil
	}
	r, ok := c.Reports[name]
	if !ok {
		return nil
	}
	return r.Mappings
}

// ManualReport is one entry in the fixed catalog of manually curated
// report templates, addressable by a short numeric code.
type ManualReport struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// ManualReports is the fixed catalog of manual query templates. Order
// matters: menu mode lists the catalog in this order.
var ManualReports = []ManualReport{
	{Code: "101", Title: "Active IPD/Admissions List"},
	{Code: "102", Title: "Program Enrollment (HIV/TB/MCH)"},
	{Code: "103", Title: "Laboratory Results (EAV Model)"},
	{Code: "104", Title: "Patient Registration & Address Details"},
	{Code: "105", Title: "Pharmacy Medication Orders"},
}
