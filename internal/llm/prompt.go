// Package llm builds generative prompts and wraps the Gemini backend
// used for SQL synthesis. The prompt combines the configured schema
// description, the active date range, and recent approved feedback as
// few-shot examples.
package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/openclinic-tools/dhisync/internal/model"
)

// fewShotLimit caps how many approved examples are pulled into a
// prompt.
const fewShotLimit = 5

// ExampleSource supplies approved (question, query) pairs for prompt
// augmentation. The moderation store satisfies it via ExampleFunc.
type ExampleSource interface {
	ListApprovedExamples(limit int) ([]model.FeedbackExample, error)
}

// ExampleFunc adapts a function to the ExampleSource interface.
type ExampleFunc func(limit int) ([]model.FeedbackExample, error)

func (f ExampleFunc) ListApprovedExamples(limit int) ([]model.FeedbackExample, error) {
	return f(limit)
}

// Builder assembles prompts for the generative backend. Schema is the
// free-text schema description; Examples may be nil when no moderation
// store is available.
type Builder struct {
	Schema   string
	Examples ExampleSource

	// now is overridable in tests.
	now func() time.Time
}

// NewBuilder returns a Builder over the given schema text and example
// source.
func NewBuilder(schema string, examples ExampleSource) *Builder {
	return &Builder{Schema: schema, Examples: examples, now: time.Now}
}

// Build assembles the full prompt for a question. Example-source
// failures degrade to a prompt without the learned section; they are
// never fatal.
func (b *Builder) Build(question, startDate, endDate string) string {
	var dateContext string
	if startDate != "" && endDate != "" {
		dateContext = fmt.Sprintf(
			"\nCRITICAL: The user's view is currently filtered between '%s' and '%s'. "+
				"ALL queries must strictly include `AND DATE(...) BETWEEN '%s' AND '%s'` "+
				"unless the user explicitly asks for 'all time'.",
			startDate, endDate, startDate, endDate)
	} else {
		now := time.Now
		if b.now != nil {
			now = b.now
		}
		dateContext = fmt.Sprintf("\nNo date filter applied. Assume current date context: Today is %s.",
			now().Format("2006-01-02"))
	}

	var sb strings.Builder
	sb.WriteString("You are a Senior SQL Engineer for the Bahmni/OpenMRS Hospital System.\n")
	sb.WriteString("Your goal is to generate clean, executable MySQL queries.\n\n")
	sb.WriteString("## DATABASE SCHEMA CONTEXT:\n")
	sb.WriteString(b.Schema)
	sb.WriteString("\n\n## UI AND TIME CONTEXT:")
	sb.WriteString(dateContext)
	sb.WriteString("\n\n## PRODUCTION RULES (STRICT):\n")
	sb.WriteString("1. Readable Names: Always JOIN `person_name` (pn) to `person` (pe) to return `pn.given_name` and `pn.family_name`.\n")
	sb.WriteString("2. Never Hardcode IDs: Join metadata tables (encounter_type, concept_name) and use LIKE filters.\n")
	sb.WriteString("3. The EAV Model: For vitals/clinical data, use the `obs` table. Join `concept_name` for both keys and values.\n")
	sb.WriteString("4. Data Integrity: Always include `voided = 0` for EVERY table queried.\n")
	sb.WriteString("5. Output: Return ONLY the raw SQL. No markdown, no explanations.\n")
	sb.WriteString(b.learnedSection())
	sb.WriteString("\n## BASELINE EXAMPLES:\n")
	sb.WriteString("User: \"How many patients registered?\"\n")
	sb.WriteString(fmt.Sprintf("SQL: SELECT COUNT(*) FROM person pe WHERE pe.voided = 0 AND DATE(pe.date_created) BETWEEN '%s' AND '%s';\n",
		startDate, endDate))
	sb.WriteString("\n## ACTUAL USER QUESTION:\n")
	sb.WriteString(fmt.Sprintf("%q\n", question))
	sb.WriteString("\n## SQL:\n")
	return sb.String()
}

// learnedSection renders the approved few-shot examples, or nothing
// when the source is empty or unavailable.
func (b *Builder) learnedSection() string {
	if b.Examples == nil {
		return ""
	}
	examples, err := b.Examples.ListApprovedExamples(fewShotLimit)
	if err != nil || len(examples) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n## PREVIOUSLY APPROVED EXAMPLES (LEARNED BEHAVIOR):\n")
	for _, ex := range examples {
		sb.WriteString(fmt.Sprintf("User: %q\nSQL: %s\n\n", ex.Question, ex.QueryText))
	}
	return sb.String()
}
