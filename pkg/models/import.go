package models

import (
	"time"

	"github.com/google/uuid"
)

// ImportStatus values for a queued import job.
const (
	ImportStatusQueued    = "queued"
	ImportStatusRunning   = "running"
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// RowError records a single skipped row and why it was skipped.
type RowError struct {
	// Row is the 1-based data row number (header excluded).
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportReport summarizes one ingestion run. TouchedCampaigns is the explicit
// "recently imported" signal: campaign id -> cleaned name for every campaign
// seen during the run. Callers must not infer recency from timestamps.
type ImportReport struct {
	RowsSeen     int        `json:"rows_seen"`
	RowsImported int        `json:"rows_imported"`
	RowsSkipped  int        `json:"rows_skipped"`
	RowErrors    []RowError `json:"row_errors,omitempty"`

	TouchedCampaigns map[string]string `json:"touched_campaigns"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// ImportJob is the unit of work handed to the background import queue.
type ImportJob struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	// Path is the spooled temp file holding the uploaded bytes.
	Path   string `json:"-"`
	Status string `json:"status"`

	Report *ImportReport `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}
