package services

import (
	"context"
	"time"
)

// SyncOptions scopes a run to a publisher plus an optional date or
// settlement-month range, matching what the admin boundary can request.
type SyncOptions struct {
	StartDate string // "2006-01-02", empty means no lower bound
	EndDate   string
	Month     string // "2006-01", settlements only
}

// SyncReport summarizes one run for logging and the report email.
type SyncReport struct {
	RunID       string         `json:"run_id"`
	PublisherID int64          `json:"publisher_id"`
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration"`
	Upserted    map[string]int `json:"upserted"` // entity kind -> count
	Skipped     map[string]int `json:"skipped"`  // entity kind -> per-item failures
	Errors      []string       `json:"errors,omitempty"`
}

// SyncService pulls the publisher's data from the affiliate API and
// reconciles it into local storage.
type SyncService interface {
	SyncPublisher(ctx context.Context, publisherID int64, opts SyncOptions) (*SyncReport, error)
}

// NotifierService delivers sync run reports to the operator.
type NotifierService interface {
	SendSyncReport(report *SyncReport, runErr error) error
}
