package model

import "fmt"

// SecurityRejection marks a question blocked before query generation.
// The rejection query text carries the SecurityMarker literal so
// callers can detect it without type information.
type SecurityRejection struct {
	Question string
}

func (e *SecurityRejection) Error() string {
	return fmt.Sprintf("question blocked by security filter: %q", e.Question)
}

// SecurityMarker is the reserved token embedded in rejection query
// text. Callers detect a blocked question by its presence.
const SecurityMarker = "SECURITY"

// ValidationError marks a generated query that failed the
// whitelist/prefix check and must not be executed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ExecutionError wraps a failure from the execution layer. The
// underlying message is passed through verbatim.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return e.Message
}

// MappingError marks a mapping pass that produced no submittable
// records, either because the report has no rules or because every
// rule was skipped.
type MappingError struct {
	ReportName string
	Reason     string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("mapping %s: %s", e.ReportName, e.Reason)
}

// SyncError marks a network, auth, or timeout failure on the
// downstream push.
type SyncError struct {
	Message string
}

func (e *SyncError) Error() string {
	return e.Message
}
