// Package dispatch routes an operator question to a query source. The
// decision chain is ordered and first-match-wins: block list, menu
// mode, manual template code, generative backend, offline rule
// router, deterministic fallback. Every path produces query text; a
// blocked question produces a rejection query carrying the SECURITY
// marker that callers must check before execution.
package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/openclinic-tools/dhisync/internal/model"
)

// Generator produces SQL from a question via a generative backend.
// Implementations own prompt construction; the dispatcher only
// sanitizes the response.
type Generator interface {
	GenerateSQL(ctx context.Context, question, startDate, endDate string) (string, error)
}

// Mode identifies which branch of the decision chain produced a query.
type Mode string

const (
	ModeBlocked    Mode = "blocked"
	ModeMenu       Mode = "menu"
	ModeManual     Mode = "manual"
	ModeGenerative Mode = "generative"
	ModeOffline    Mode = "offline"
	ModeFallback   Mode = "fallback"
)

// blockTokens are matched with their trailing space so that a bare
// mention ("was it deleted?") does not trip the block list while a
// command form ("delete all patients") does.
var blockTokens = []string{"drop ", "delete ", "truncate ", "update ", "alter ", "insert "}

var menuSynonyms = map[string]bool{"list": true, "help": true, "menu": true, "manual": true}

var manualCode = regexp.MustCompile(`^(?:sql\s+)?(\d+)$`)

// Dispatcher routes questions to query text. Generator may be nil
// when no backend credential is configured; the chain then skips the
// generative step entirely.
type Dispatcher struct {
	QueriesDir string
	Generator  Generator
}

// New returns a Dispatcher reading manual templates from queriesDir.
func New(queriesDir string, gen Generator) *Dispatcher {
	return &Dispatcher{QueriesDir: queriesDir, Generator: gen}
}

// Dispatch runs the decision chain and returns the resulting query
// text with the mode that produced it. It never returns an error:
// generative failures fall through to the offline router, and the
// final fallback always matches.
func (d *Dispatcher) Dispatch(ctx context.Context, question, startDate, endDate string) (string, Mode) {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, tok := range blockTokens {
		if strings.Contains(q, tok) {
			return rejectionQuery, ModeBlocked
		}
	}

	if menuSynonyms[q] {
		return menuQuery(), ModeMenu
	}

	if m := manualCode.FindStringSubmatch(q); m != nil {
		return d.manualQuery(m[1], startDate, endDate), ModeManual
	}

	if d.Generator != nil {
		if sql, err := d.Generator.GenerateSQL(ctx, question, startDate, endDate); err == nil {
			if cleaned := cleanGenerated(sql); cleaned != "" {
				return cleaned, ModeGenerative
			}
		}
		// Backend errors are never fatal; fall through to the router.
	}

	if sql, ok := routeOffline(q, startDate, endDate); ok {
		return sql, ModeOffline
	}

	return fallbackQuery, ModeFallback
}

// rejectionQuery carries the model.SecurityMarker literal; callers
// detect it and never execute the text.
var rejectionQuery = fmt.Sprintf("SELECT '%s WARNING: Action blocked' as message", model.SecurityMarker)

// cleanGenerated strips markdown code fences from a backend response
// and truncates at the first statement terminator.
func cleanGenerated(sql string) string {
	sql = strings.ReplaceAll(sql, "```sql", "")
	sql = strings.ReplaceAll(sql, "```", "")
	if i := strings.Index(sql, ";"); i >= 0 {
		sql = sql[:i]
	}
	return strings.TrimSpace(sql)
}
