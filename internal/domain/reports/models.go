package reports

import (
	"fmt"
	"time"

	"hireflow/internal/domain/core"
)

var ErrJobRunNotFound = fmt.Errorf("job run %w", core.ErrNotFound)

type PipelineDashboard struct {
	ApplicationsByStatus      map[string]int `json:"applicationsByStatus"`
	PendingOffers             int            `json:"pendingOffers"`
	AwaitingEmployeeSignature int            `json:"awaitingEmployeeSignature"`
	AwaitingEmployerSignature int            `json:"awaitingEmployerSignature"`
	FullyExecutedContracts    int            `json:"fullyExecutedContracts"`
	Employees                 int            `json:"employees"`
}

type PayrollDashboard struct {
	DraftRuns              int `json:"draftRuns"`
	RunsUnderReview        int `json:"runsUnderReview"`
	PendingSigningBonuses  int `json:"pendingSigningBonuses"`
	ApprovedSigningBonuses int `json:"approvedSigningBonuses"`
}

// ContractCounts splits contracts by which signatures are still missing.
type ContractCounts struct {
	AwaitingEmployee int
	AwaitingEmployer int
	FullyExecuted    int
}

type JobRun struct {
	ID          string         `json:"id"`
	JobType     string         `json:"jobType"`
	Status      string         `json:"status"`
	Details     map[string]any `json:"details"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

type JobRunFilter struct {
	JobType     string
	Status      string
	StartedFrom *time.Time
	StartedTo   *time.Time
}
