package model

import (
	"fmt"
	"time"
)

// FeedbackStatus is the moderation state of a feedback record.
type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackApproved FeedbackStatus = "approved"
	FeedbackRejected FeedbackStatus = "rejected"
)

var validFeedbackStatuses = []FeedbackStatus{
	FeedbackPending,
	FeedbackApproved,
	FeedbackRejected,
}

// ValidateFeedbackStatus returns an error if s is not a recognized status.
func ValidateFeedbackStatus(s FeedbackStatus) error {
	for _, v := range validFeedbackStatuses {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("invalid feedback status %q: must be one of %v", s, validFeedbackStatuses)
}

// FeedbackRecord is one entry in the moderation queue. Records are
// created pending; approved records are surfaced as few-shot examples
// for the generative backend and never transition backward.
type FeedbackRecord struct {
	ID         int            `json:"id"`
	Question   string         `json:"question"`
	QueryText  string         `json:"query_text"`
	ReportName string         `json:"report_name"`
	Status     FeedbackStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
}

// FeedbackExample is a (question, query) pair used as few-shot
// guidance in generative prompts.
type FeedbackExample struct {
	Question  string `json:"question"`
	QueryText string `json:"query_text"`
}
