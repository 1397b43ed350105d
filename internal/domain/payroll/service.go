package payroll

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// CreateSigningBonusPolicy records a signing bonus for a position. Status
// defaults to draft.
func (s *Service) CreateSigningBonusPolicy(ctx context.Context, tenantID string, in SigningBonusPolicyInput) (*SigningBonusPolicy, error) {
	in.PositionName = strings.TrimSpace(in.PositionName)
	if in.PositionName == "" {
		return nil, fmt.Errorf("%w: position name is required", ErrInvalidInput)
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Status == "" {
		in.Status = PolicyStatusDraft
	}
	if !validPolicyStatus(in.Status) {
		return nil, ErrInvalidStatus
	}
	policy, err := s.store.CreatePolicy(ctx, tenantID, in)
	if err != nil {
		return nil, fmt.Errorf("payroll: create signing bonus policy: %w", err)
	}
	return policy, nil
}

func (s *Service) ListSigningBonusPolicies(ctx context.Context, tenantID string, limit, offset int) ([]SigningBonusPolicy, int, error) {
	return s.store.ListPolicies(ctx, tenantID, limit, offset)
}

func (s *Service) CreateEmployeeSigningBonus(ctx context.Context, tenantID string, in EmployeeSigningBonusInput) (*EmployeeSigningBonus, error) {
	if in.EmployeeID == "" || in.SigningBonusID == "" {
		return nil, fmt.Errorf("%w: employee and signing bonus are required", ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = BonusStatusPending
	}
	if in.Status != BonusStatusPending {
		return nil, ErrInvalidStatus
	}
	bonus, err := s.store.CreateEmployeeBonus(ctx, tenantID, in)
	if err != nil {
		return nil, fmt.Errorf("payroll: create employee signing bonus: %w", err)
	}
	return bonus, nil
}

func (s *Service) ApproveSigningBonus(ctx context.Context, tenantID, id string) (*EmployeeSigningBonus, error) {
	bonus, err := s.store.ApproveEmployeeBonus(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("payroll: approve signing bonus %s: %w", id, err)
	}
	return bonus, nil
}

func (s *Service) ListEmployeeSigningBonuses(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]EmployeeSigningBonus, int, error) {
	return s.store.ListEmployeeBonuses(ctx, tenantID, employeeID, limit, offset)
}

func (s *Service) CreatePayrollRun(ctx context.Context, tenantID string, period time.Time) (*PayrollRun, error) {
	if period.IsZero() {
		return nil, fmt.Errorf("%w: payroll period is required", ErrInvalidInput)
	}
	return s.store.CreateRun(ctx, tenantID, period.UTC())
}

func (s *Service) ListPayrollRuns(ctx context.Context, tenantID string, limit, offset int) ([]PayrollRun, int, error) {
	return s.store.ListRuns(ctx, tenantID, limit, offset)
}

// FindDraftPayrollRunInPeriod returns nil, nil when no draft run matches.
func (s *Service) FindDraftPayrollRunInPeriod(ctx context.Context, tenantID string, start, end time.Time) (*PayrollRun, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: period end before start", ErrInvalidInput)
	}
	run, err := s.store.FindDraftRunInPeriod(ctx, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("payroll: find draft run: %w", err)
	}
	return run, nil
}

// StartPayrollInitiation hands a draft run to the specialist for review.
func (s *Service) StartPayrollInitiation(ctx context.Context, tenantID string, req InitiationRequest) (InitiationResult, error) {
	if req.PayrollRunID == "" || req.PayrollSpecialistID == "" {
		return InitiationResult{}, fmt.Errorf("%w: run and specialist are required", ErrInvalidInput)
	}
	run, err := s.store.StartInitiation(ctx, tenantID, req.PayrollRunID, req.PayrollSpecialistID)
	if err != nil {
		return InitiationResult{}, fmt.Errorf("payroll: start initiation %s: %w", req.PayrollRunID, err)
	}
	return InitiationResult{
		Message: fmt.Sprintf("payroll run for %s is now under review", run.PayrollPeriod.UTC().Format("2006-01-02")),
		Run:     run,
	}, nil
}
