package types

import "time"

// ItemStatus classifies the outcome of one bookmark within a run.
type ItemStatus string

const (
	StatusSucceeded ItemStatus = "succeeded"
	StatusSkipped   ItemStatus = "skipped"
	StatusFailed    ItemStatus = "failed"
)

// ItemResult is the per-bookmark outcome of a pipeline run.
// Exactly one ItemResult is produced per requested identifier.
type ItemResult struct {
	ID          string     `json:"id"`
	Status      ItemStatus `json:"status"`
	NewTags     []string   `json:"new_tags,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	FailureKind string     `json:"failure_kind,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

// ProcessingRun aggregates one batch invocation of the pipeline.
// It is appended to the history store at run completion and never mutated.
type ProcessingRun struct {
	RunID        string       `json:"run_id"`
	StartedAt    time.Time    `json:"started_at"`
	RequestedIDs []string     `json:"requested_ids"`
	Items        []ItemResult `json:"items"`
	FailedIDs    []string     `json:"failed_ids"`
	ElapsedMs    int64        `json:"elapsed_ms"`
}

// HistoryFilter narrows a history listing. Zero values mean no constraint.
type HistoryFilter struct {
	Since time.Time
	Limit int
}
