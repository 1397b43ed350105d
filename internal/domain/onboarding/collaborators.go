package onboarding

import (
	"context"
	"time"

	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/domain/payroll"
	"hireflow/internal/domain/recruitment"
)

type ContractStore interface {
	FindContract(ctx context.Context, tenantID, id string) (*recruitment.Contract, error)
	UpdateContract(ctx context.Context, tenantID string, c recruitment.Contract) (*recruitment.Contract, error)
	FindOffer(ctx context.Context, tenantID, id string) (*recruitment.Offer, error)
	FindApplication(ctx context.Context, tenantID, id string) (*recruitment.Application, error)
	UpdateApplicationStatus(ctx context.Context, tenantID, id, status string) error
}

type Notifier interface {
	Send(ctx context.Context, tenantID string, msg notifications.Message) error
}

type Registrar interface {
	Register(ctx context.Context, tenantID string, reg auth.Registration) (string, error)
}

type RoleDirectory interface {
	FindUsersByRole(ctx context.Context, tenantID, role string) ([]auth.Identity, error)
}

type PayrollConfiguration interface {
	CreateSigningBonusPolicy(ctx context.Context, tenantID string, in payroll.SigningBonusPolicyInput) (*payroll.SigningBonusPolicy, error)
}

type PayrollExecution interface {
	CreateEmployeeSigningBonus(ctx context.Context, tenantID string, in payroll.EmployeeSigningBonusInput) (*payroll.EmployeeSigningBonus, error)
	ApproveSigningBonus(ctx context.Context, tenantID, id string) (*payroll.EmployeeSigningBonus, error)
	FindDraftPayrollRunInPeriod(ctx context.Context, tenantID string, start, end time.Time) (*payroll.PayrollRun, error)
	StartPayrollInitiation(ctx context.Context, tenantID string, req payroll.InitiationRequest) (payroll.InitiationResult, error)
}

type StepRecorder interface {
	RecordStep(step, outcome string)
}

// RunTracker persists one record per provisioning run.
type RunTracker interface {
	Track(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error)
}
