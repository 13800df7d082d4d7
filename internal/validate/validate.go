// Package validate screens SQL text before it reaches the clinical
// database. The check is a deliberate surface scan, not a parser: a
// lower-cased substring blacklist plus a SELECT prefix requirement.
// False positives (a column literally named "update_count") are
// accepted as the cost of keeping the check trivially auditable.
package validate

import (
	"strings"

	"github.com/openclinic-tools/dhisync/internal/model"
)

var forbidden = []string{"insert", "update", "delete", "drop", "alter"}

// Check rejects any statement containing a forbidden keyword anywhere
// in its text, then requires the trimmed statement to start with
// "select". It runs immediately before execution regardless of which
// routing path produced the query.
func Check(sql string) error {
	lower := strings.ToLower(sql)

	for _, word := range forbidden {
		if strings.Contains(lower, word) {
			return &model.ValidationError{Reason: "unsafe SQL detected"}
		}
	}

	if !strings.HasPrefix(strings.TrimSpace(lower), "select") {
		return &model.ValidationError{Reason: "only SELECT queries allowed"}
	}

	return nil
}
