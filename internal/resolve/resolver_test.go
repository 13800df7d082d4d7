package resolve

import (
	"testing"

	"github.com/openclinic-tools/dhisync/internal/model"
)

var testNames = []string{"VitalsReport", "PatientGrid", "DailySummary"}

func TestResolveCode(t *testing.T) {
	r := New(testNames)

	tests := []struct {
		question string
		want     string
	}{
		{"101", "ActiveIPDList"},
		{"sql 102", "ProgramEnrollment"},
		{"show me report 103 for january", "LabResults"},
		{"1011", model.DefaultReportName},
		{"report 999", model.DefaultReportName},
	}

	for _, tt := range tests {
		if got := r.Resolve(tt.question); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.question, got, tt.want)
		}
	}
}

func TestResolveCodeBeforeExact(t *testing.T) {
	r := New(testNames)

	// A code and an exact name in the same question: code wins.
	got := r.Resolve("101 vitalsreport")
	if got != "ActiveIPDList" {
		t.Errorf("Resolve = %q, want ActiveIPDList", got)
	}
}

func TestResolveExact(t *testing.T) {
	r := New(testNames)

	got := r.Resolve("send the dailysummary now")
	if got != "DailySummary" {
		t.Errorf("Resolve = %q, want DailySummary", got)
	}

	// List order decides when two names both appear.
	got = r.Resolve("patientgrid and vitalsreport")
	if got != "VitalsReport" {
		t.Errorf("Resolve = %q, want VitalsReport (list order)", got)
	}
}

func TestResolveFuzzy(t *testing.T) {
	r := New(testNames)

	// Close misspelling resolves to the nearest name.
	got := r.Resolve("push vitalsrepor today")
	if got != "VitalsReport" {
		t.Errorf("Resolve = %q, want VitalsReport", got)
	}

	// The first token with any match wins over later tokens.
	got = r.Resolve("dailysumary vitalsrepor")
	if got != "DailySummary" {
		t.Errorf("Resolve = %q, want DailySummary (first token wins)", got)
	}
}

func TestResolveDefault(t *testing.T) {
	r := New(testNames)

	if got := r.Resolve("hello there"); got != model.DefaultReportName {
		t.Errorf("Resolve = %q, want %q", got, model.DefaultReportName)
	}
	if got := r.Resolve(""); got != model.DefaultReportName {
		t.Errorf("Resolve(empty) = %q, want %q", got, model.DefaultReportName)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abc", "abc", 1},
		{"", "", 1},
		{"abc", "abd", 1 - 1.0/3},
		{"abc", "xyz", 0},
	}

	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
