package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cryptoutil "hireflow/internal/platform/crypto"
)

var ErrEmployeeNotFound = fmt.Errorf("employee %w", ErrNotFound)

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

// CreateEmployeeTx inserts the employee row inside the caller's transaction.
func (s *Store) CreateEmployeeTx(ctx context.Context, tx pgx.Tx, tenantID string, hire NewHire) (string, error) {
	nationalEnc, err := s.Crypto.EncryptString(hire.NationalID)
	if err != nil {
		return "", fmt.Errorf("core: encrypt national id: %w", err)
	}

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, user_id, employee_number, first_name, last_name, email, national_id_enc, start_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, tenantID, hire.UserID, hire.EmployeeNumber, hire.FirstName, hire.LastName, hire.Email, nationalEnc, hire.StartDate, EmployeeStatusActive).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

const employeeColumns = `id, COALESCE(user_id::text, ''), employee_number, first_name, last_name, email,
           national_id_enc, start_date, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanEmployee(row rowScanner) (*Employee, error) {
	var emp Employee
	var nationalEnc []byte
	if err := row.Scan(&emp.ID, &emp.UserID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Email,
		&nationalEnc, &emp.StartDate, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
		return nil, err
	}
	nationalID, err := s.Crypto.DecryptString(nationalEnc)
	if err != nil {
		return nil, fmt.Errorf("core: decrypt national id: %w", err)
	}
	emp.NationalID = nationalID
	return &emp, nil
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (*Employee, error) {
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1 AND user_id = $2
  `, tenantID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) GetEmployee(ctx context.Context, tenantID, id string) (*Employee, error) {
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	return emp, err
}

// ListEmployees returns the newest hires first.
func (s *Store) ListEmployees(ctx context.Context, tenantID string, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1
    ORDER BY created_at DESC, id
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (s *Store) CountEmployees(ctx context.Context, tenantID string) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1", tenantID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
