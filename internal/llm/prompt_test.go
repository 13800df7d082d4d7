package llm

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/openclinic-tools/dhisync/internal/model"
)

func TestBuildIncludesSchemaAndQuestion(t *testing.T) {
	b := NewBuilder("person(person_id, voided)", nil)

	prompt := b.Build("how many patients", "2025-01-01", "2025-01-31")
	if !strings.Contains(prompt, "person(person_id, voided)") {
		t.Error("prompt missing schema text")
	}
	if !strings.Contains(prompt, `"how many patients"`) {
		t.Error("prompt missing quoted question")
	}
	if !strings.Contains(prompt, "BETWEEN '2025-01-01' AND '2025-01-31'") {
		t.Error("prompt missing date range directive")
	}
}

func TestBuildWithoutDatesUsesToday(t *testing.T) {
	b := NewBuilder("", nil)
	b.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }

	prompt := b.Build("anything", "", "")
	if !strings.Contains(prompt, "Today is 2025-03-15") {
		t.Error("prompt missing current-date fallback")
	}
	if strings.Contains(prompt, "CRITICAL") {
		t.Error("prompt contains date filter directive without dates")
	}
}

func TestBuildIncludesApprovedExamples(t *testing.T) {
	examples := ExampleFunc(func(limit int) ([]model.FeedbackExample, error) {
		if limit != fewShotLimit {
			t.Errorf("limit = %d, want %d", limit, fewShotLimit)
		}
		return []model.FeedbackExample{
			{Question: "count visits", QueryText: "SELECT COUNT(*) FROM visit"},
		}, nil
	})
	b := NewBuilder("", examples)

	prompt := b.Build("q", "", "")
	if !strings.Contains(prompt, "PREVIOUSLY APPROVED EXAMPLES") {
		t.Error("prompt missing learned section")
	}
	if !strings.Contains(prompt, "SELECT COUNT(*) FROM visit") {
		t.Error("prompt missing example query")
	}
}

func TestBuildExampleSourceFailureDegrades(t *testing.T) {
	examples := ExampleFunc(func(int) ([]model.FeedbackExample, error) {
		return nil, errors.New("store unavailable")
	})
	b := NewBuilder("", examples)

	prompt := b.Build("q", "", "")
	if strings.Contains(prompt, "PREVIOUSLY APPROVED EXAMPLES") {
		t.Error("failed example source still produced a learned section")
	}
	if !strings.Contains(prompt, "ACTUAL USER QUESTION") {
		t.Error("prompt truncated by example failure")
	}
}

func TestBuildNoExamplesOmitsSection(t *testing.T) {
	examples := ExampleFunc(func(int) ([]model.FeedbackExample, error) {
		return nil, nil
	})
	b := NewBuilder("", examples)

	if strings.Contains(b.Build("q", "", ""), "PREVIOUSLY APPROVED EXAMPLES") {
		t.Error("empty example list still produced a learned section")
	}
}
