package reports

import (
	"context"
	"fmt"

	"hireflow/internal/domain/payroll"
	"hireflow/internal/domain/recruitment"
)

// applicationStatuses are always present in the dashboard, zero when unused.
var applicationStatuses = []string{
	recruitment.ApplicationStatusSubmitted,
	recruitment.ApplicationStatusInReview,
	recruitment.ApplicationStatusOffered,
	recruitment.ApplicationStatusHired,
	recruitment.ApplicationStatusRejected,
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) PipelineDashboard(ctx context.Context, tenantID string) (PipelineDashboard, error) {
	byStatus, err := s.Store.ApplicationsByStatus(ctx, tenantID)
	if err != nil {
		return PipelineDashboard{}, fmt.Errorf("reports: applications by status: %w", err)
	}
	for _, status := range applicationStatuses {
		if _, ok := byStatus[status]; !ok {
			byStatus[status] = 0
		}
	}

	pendingOffers, err := s.Store.CountByStatus(ctx, "offers", tenantID, recruitment.OfferStatusPending)
	if err != nil {
		return PipelineDashboard{}, fmt.Errorf("reports: pending offers: %w", err)
	}
	contracts, err := s.Store.ContractCounts(ctx, tenantID)
	if err != nil {
		return PipelineDashboard{}, fmt.Errorf("reports: contract counts: %w", err)
	}
	employees, err := s.Store.EmployeeCount(ctx, tenantID)
	if err != nil {
		return PipelineDashboard{}, fmt.Errorf("reports: employee count: %w", err)
	}

	return PipelineDashboard{
		ApplicationsByStatus:      byStatus,
		PendingOffers:             pendingOffers,
		AwaitingEmployeeSignature: contracts.AwaitingEmployee,
		AwaitingEmployerSignature: contracts.AwaitingEmployer,
		FullyExecutedContracts:    contracts.FullyExecuted,
		Employees:                 employees,
	}, nil
}

type statusCount struct {
	table  string
	status string
	dst    *int
}

func (s *Service) PayrollDashboard(ctx context.Context, tenantID string) (PayrollDashboard, error) {
	var out PayrollDashboard
	counts := []statusCount{
		{table: "payroll_runs", status: payroll.RunStatusDraft, dst: &out.DraftRuns},
		{table: "payroll_runs", status: payroll.RunStatusUnderReview, dst: &out.RunsUnderReview},
		{table: "employee_signing_bonuses", status: payroll.BonusStatusPending, dst: &out.PendingSigningBonuses},
		{table: "employee_signing_bonuses", status: payroll.BonusStatusApproved, dst: &out.ApprovedSigningBonuses},
	}
	for _, c := range counts {
		n, err := s.Store.CountByStatus(ctx, c.table, tenantID, c.status)
		if err != nil {
			return PayrollDashboard{}, fmt.Errorf("reports: count %s %s: %w", c.table, c.status, err)
		}
		*c.dst = n
	}
	return out, nil
}

func (s *Service) ListJobRuns(ctx context.Context, tenantID string, filter JobRunFilter, limit, offset int) ([]JobRun, error) {
	return s.Store.ListJobRuns(ctx, tenantID, filter, limit, offset)
}

func (s *Service) CountJobRuns(ctx context.Context, tenantID string, filter JobRunFilter) (int, error) {
	return s.Store.CountJobRuns(ctx, tenantID, filter)
}

func (s *Service) GetJobRun(ctx context.Context, tenantID, runID string) (*JobRun, error) {
	return s.Store.JobRunByID(ctx, tenantID, runID)
}
