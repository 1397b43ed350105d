package reports

import "context"

type StoreAPI interface {
	ApplicationsByStatus(ctx context.Context, tenantID string) (map[string]int, error)
	CountByStatus(ctx context.Context, table, tenantID, status string) (int, error)
	ContractCounts(ctx context.Context, tenantID string) (ContractCounts, error)
	EmployeeCount(ctx context.Context, tenantID string) (int, error)
	ListJobRuns(ctx context.Context, tenantID string, filter JobRunFilter, limit, offset int) ([]JobRun, error)
	CountJobRuns(ctx context.Context, tenantID string, filter JobRunFilter) (int, error)
	JobRunByID(ctx context.Context, tenantID, runID string) (*JobRun, error)
}
