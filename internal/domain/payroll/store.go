package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreatePolicy(ctx context.Context, tenantID string, in SigningBonusPolicyInput) (*SigningBonusPolicy, error) {
	var p SigningBonusPolicy
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO signing_bonus_policies (tenant_id, position_name, amount, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id, position_name, amount, status, created_at
  `, tenantID, in.PositionName, in.Amount, in.Status).Scan(&p.ID, &p.PositionName, &p.Amount, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPolicies(ctx context.Context, tenantID string, limit, offset int) ([]SigningBonusPolicy, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM signing_bonus_policies WHERE tenant_id = $1", tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, position_name, amount, status, created_at
    FROM signing_bonus_policies
    WHERE tenant_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []SigningBonusPolicy
	for rows.Next() {
		var p SigningBonusPolicy
		if err := rows.Scan(&p.ID, &p.PositionName, &p.Amount, &p.Status, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

const bonusColumns = "id, employee_id, signing_bonus_id, status, approved_at, created_at"

func scanBonus(row pgx.Row) (*EmployeeSigningBonus, error) {
	var b EmployeeSigningBonus
	if err := row.Scan(&b.ID, &b.EmployeeID, &b.SigningBonusID, &b.Status, &b.ApprovedAt, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) CreateEmployeeBonus(ctx context.Context, tenantID string, in EmployeeSigningBonusInput) (*EmployeeSigningBonus, error) {
	var exists bool
	if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM signing_bonus_policies WHERE tenant_id = $1 AND id = $2)", tenantID, in.SigningBonusID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPolicyNotFound
	}
	return scanBonus(s.DB.QueryRow(ctx, `
    INSERT INTO employee_signing_bonuses (tenant_id, employee_id, signing_bonus_id, status)
    VALUES ($1,$2,$3,$4)
    RETURNING `+bonusColumns, tenantID, in.EmployeeID, in.SigningBonusID, in.Status))
}

// ApproveEmployeeBonus moves a pending bonus to approved.
func (s *Store) ApproveEmployeeBonus(ctx context.Context, tenantID, id string) (*EmployeeSigningBonus, error) {
	bonus, err := scanBonus(s.DB.QueryRow(ctx, `
    UPDATE employee_signing_bonuses
    SET status = $3, approved_at = now()
    WHERE tenant_id = $1 AND id = $2 AND status = $4
    RETURNING `+bonusColumns, tenantID, id, BonusStatusApproved, BonusStatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.missingOrInvalid(ctx, "employee_signing_bonuses", tenantID, id, ErrSigningBonusNotFound)
	}
	return bonus, err
}

func (s *Store) ListEmployeeBonuses(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]EmployeeSigningBonus, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employee_signing_bonuses
    WHERE tenant_id = $1 AND ($2 = '' OR employee_id::text = $2)
  `, tenantID, employeeID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+bonusColumns+`
    FROM employee_signing_bonuses
    WHERE tenant_id = $1 AND ($2 = '' OR employee_id::text = $2)
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, tenantID, employeeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []EmployeeSigningBonus
	for rows.Next() {
		b, err := scanBonus(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

const runColumns = "id, payroll_period, status, COALESCE(payroll_specialist_id::text, ''), initiated_at, created_at"

func scanRun(row pgx.Row) (*PayrollRun, error) {
	var r PayrollRun
	if err := row.Scan(&r.ID, &r.PayrollPeriod, &r.Status, &r.PayrollSpecialistID, &r.InitiatedAt, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) CreateRun(ctx context.Context, tenantID string, period time.Time) (*PayrollRun, error) {
	return scanRun(s.DB.QueryRow(ctx, `
    INSERT INTO payroll_runs (tenant_id, payroll_period, status)
    VALUES ($1,$2,$3)
    RETURNING `+runColumns, tenantID, period, RunStatusDraft))
}

func (s *Store) ListRuns(ctx context.Context, tenantID string, limit, offset int) ([]PayrollRun, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payroll_runs WHERE tenant_id = $1", tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+runColumns+`
    FROM payroll_runs
    WHERE tenant_id = $1
    ORDER BY payroll_period DESC, created_at DESC
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []PayrollRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

// FindDraftRunInPeriod returns the oldest draft run whose period lies in
// [start, end], or nil when there is none.
func (s *Store) FindDraftRunInPeriod(ctx context.Context, tenantID string, start, end time.Time) (*PayrollRun, error) {
	run, err := scanRun(s.DB.QueryRow(ctx, `
    SELECT `+runColumns+`
    FROM payroll_runs
    WHERE tenant_id = $1 AND status = $2 AND payroll_period >= $3 AND payroll_period <= $4
    ORDER BY payroll_period, created_at
    LIMIT 1
  `, tenantID, RunStatusDraft, start, end))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

func (s *Store) StartInitiation(ctx context.Context, tenantID, runID, specialistID string) (*PayrollRun, error) {
	run, err := scanRun(s.DB.QueryRow(ctx, `
    UPDATE payroll_runs
    SET status = $3, payroll_specialist_id = $4, initiated_at = now()
    WHERE tenant_id = $1 AND id = $2 AND status = $5
    RETURNING `+runColumns, tenantID, runID, RunStatusUnderReview, specialistID, RunStatusDraft))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.missingOrInvalid(ctx, "payroll_runs", tenantID, runID, ErrPayrollRunNotFound)
	}
	return run, err
}

// missingOrInvalid distinguishes a missing row from one in the wrong state
// after a conditional update matched nothing.
func (s *Store) missingOrInvalid(ctx context.Context, table, tenantID, id string, notFound error) error {
	var exists bool
	if err := s.DB.QueryRow(ctx, fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE tenant_id = $1 AND id = $2)", table), tenantID, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return notFound
	}
	return ErrInvalidState
}
