package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// systemContext primes the model for the OpenMRS/Bahmni schema before
// the per-question prompt is sent.
const systemContext = `You are an expert OpenMRS and Bahmni MySQL Analyst.
SCHEMA GUIDELINES:
1. PATIENTS: ` + "`person` -> `patient`. Names in `person_name`. MRN in `patient_identifier`." + `
2. CLINICAL: ` + "`visit` (Admissions), `encounter` (Clinical events)." + `
3. BAHMNI/IPD: Admitted patients have a ` + "`visit` where `date_stopped`" + ` is NULL.
4. OBSERVATIONS: ` + "`obs` table. Join `concept_name`" + ` to find questions.
   Answers are in ` + "`value_numeric`, `value_text`, or `value_coded` (join `concept_name` again for labels)." + `
5. PROGRAMS: ` + "`patient_program` links patients to `program` names." + `
6. DRUGS: ` + "`orders` -> `drug_order` -> `drug`." + `
RULES: Use standard joins. Always filter ` + "`voided = 0`" + `. Output RAW SQL ONLY.`

// Gemini generates SQL through the Google GenAI API. It satisfies the
// dispatcher's Generator interface.
type Gemini struct {
	client *genai.Client
	model  string
	prompt *Builder
}

// NewGemini creates a Gemini backend. apiKey must be non-empty;
// callers that have no key configured should not construct a backend
// at all, leaving the dispatcher to skip the generative step.
func NewGemini(ctx context.Context, apiKey string, prompt *Builder) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}

	return &Gemini{client: client, model: defaultModel, prompt: prompt}, nil
}

// GenerateSQL sends the assembled prompt with a zero temperature and
// returns the raw response text. Fence stripping and terminator
// truncation are the dispatcher's job.
func (g *Gemini) GenerateSQL(ctx context.Context, question, startDate, endDate string) (string, error) {
	text := fmt.Sprintf("Date range: %s to %s. Query: %s",
		startDate, endDate, g.prompt.Build(question, startDate, endDate))

	temperature := float32(0)
	result, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			Temperature:       &temperature,
			SystemInstruction: genai.NewContentFromText(systemContext, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	sql := strings.TrimSpace(result.Text())
	if sql == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return sql, nil
}
