// Package resolve maps a free-text question to a canonical report
// name. Resolution tries three strategies in a fixed order: a numeric
// report code, an exact substring match against the configured report
// list, then a fuzzy per-token match. A question that satisfies an
// earlier strategy never falls through to a later one.
package resolve

import (
	"regexp"
	"strings"

	"github.com/openclinic-tools/dhisync/internal/model"
)

// codeReports are the numeric codes that resolve directly to a report
// name. Only codes with a configured DHIS2 mapping are listed; the
// remaining manual catalog entries are display-only.
var codeReports = map[string]string{
	"101": "ActiveIPDList",
	"102": "ProgramEnrollment",
	"103": "LabResults",
}

var numericToken = regexp.MustCompile(`\b(\d+)\b`)

// Resolver resolves report names against a configured list of known
// names, typically loaded from the reports list resource.
type Resolver struct {
	names []string
}

// New returns a Resolver over the given report names. List order is
// significant for exact matching.
func New(names []string) *Resolver {
	return &Resolver{names: names}
}

// Resolve returns the report name for a question, or
// model.DefaultReportName when nothing matches.
func (r *Resolver) Resolve(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))

	if name, ok := resolveCode(q); ok {
		return name
	}
	if name, ok := r.resolveExact(q); ok {
		return name
	}
	if name, ok := r.resolveFuzzy(q); ok {
		return name
	}
	return model.DefaultReportName
}

// resolveCode matches a standalone numeric token against the code
// allow-list.
func resolveCode(q string) (string, bool) {
	for _, m := range numericToken.FindAllStringSubmatch(q, -1) {
		if name, ok := codeReports[m[1]]; ok {
			return name, true
		}
	}
	return "", false
}

// resolveExact returns the first configured name, in list order, whose
// lower-cased text appears as a substring of the question.
func (r *Resolver) resolveExact(q string) (string, bool) {
	for _, name := range r.names {
		if name == "" {
			continue
		}
		if strings.Contains(q, strings.ToLower(name)) {
			return name, true
		}
	}
	return "", false
}

// resolveFuzzy walks the question tokens in order; the first token
// with a similarity ratio of at least 0.5 against any configured name
// wins, taking the best-scoring name for that token.
func (r *Resolver) resolveFuzzy(q string) (string, bool) {
	for _, token := range strings.Fields(q) {
		best := ""
		bestScore := 0.0
		for _, name := range r.names {
			if name == "" {
				continue
			}
			score := similarity(token, strings.ToLower(name))
			if score >= 0.5 && score > bestScore {
				best = name
				bestScore = score
			}
		}
		if best != "" {
			return best, true
		}
	}
	return "", false
}

// similarity is a normalized edit-distance ratio in [0, 1], where 1 is
// an exact match.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(a, b))/float64(longest)
}

// editDistance is the Levenshtein distance between two strings,
// computed over bytes with a two-row table.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
