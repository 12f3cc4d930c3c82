package model

import (
	"time"

	"github.com/google/uuid"
)

// RunID identifies one report run
type RunID string

// NewRunID returns a new time ordered run ID
func NewRunID() RunID {
	return RunID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of RunID
func (x RunID) String() string {
	return string(x)
}

// RunRecord is the persisted history entry of a completed run
type RunRecord struct {
	ID            RunID
	GeneratedDate time.Time
	ArtifactID    ArtifactID
	Summary       ReportSummary
	CreatedAt     time.Time
}

// RunResult is returned by a report run
type RunResult struct {
	RunID      RunID
	Skipped    bool
	Report     *Report
	ArtifactID ArtifactID

	// NotifyFailures counts notifiers that failed; failures never fail the run
	NotifyFailures int
}
