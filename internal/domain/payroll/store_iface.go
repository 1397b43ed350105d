package payroll

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreatePolicy(ctx context.Context, tenantID string, in SigningBonusPolicyInput) (*SigningBonusPolicy, error)
	ListPolicies(ctx context.Context, tenantID string, limit, offset int) ([]SigningBonusPolicy, int, error)
	CreateEmployeeBonus(ctx context.Context, tenantID string, in EmployeeSigningBonusInput) (*EmployeeSigningBonus, error)
	ApproveEmployeeBonus(ctx context.Context, tenantID, id string) (*EmployeeSigningBonus, error)
	ListEmployeeBonuses(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]EmployeeSigningBonus, int, error)
	CreateRun(ctx context.Context, tenantID string, period time.Time) (*PayrollRun, error)
	ListRuns(ctx context.Context, tenantID string, limit, offset int) ([]PayrollRun, int, error)
	FindDraftRunInPeriod(ctx context.Context, tenantID string, start, end time.Time) (*PayrollRun, error)
	StartInitiation(ctx context.Context, tenantID, runID, specialistID string) (*PayrollRun, error)
}
