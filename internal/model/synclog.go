package model

import "time"

// SyncLogMax is the maximum number of entries retained in the sync
// ledger. Older entries are dropped on append.
const SyncLogMax = 200

// SyncLogEntry records one completed export operation. Entries are
// immutable once written; the ledger is ordered most-recent-first.
type SyncLogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Period      string    `json:"period"`
	ReportName  string    `json:"report"`
	RecordCount int       `json:"count"`
	Status      string    `json:"status"`
}
