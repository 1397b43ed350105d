package recruitment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const contractColumns = `id, offer_id, role, signing_bonus, employee_signed_at,
           COALESCE(employee_signature_url, ''), employer_signed_at, created_at, updated_at`

func scanContract(row pgx.Row) (*Contract, error) {
	var c Contract
	if err := row.Scan(&c.ID, &c.OfferID, &c.Role, &c.SigningBonus, &c.EmployeeSignedAt,
		&c.EmployeeSignatureURL, &c.EmployerSignedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) FindContract(ctx context.Context, tenantID, id string) (*Contract, error) {
	return scanContract(s.DB.QueryRow(ctx, `
    SELECT `+contractColumns+`
    FROM contracts
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id))
}

// UpdateContract writes the merged contract fields and returns the stored row.
func (s *Store) UpdateContract(ctx context.Context, tenantID string, c Contract) (*Contract, error) {
	updated, err := scanContract(s.DB.QueryRow(ctx, `
    UPDATE contracts
    SET role = $3, signing_bonus = $4, employee_signed_at = $5,
        employee_signature_url = $6, employer_signed_at = $7, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
    RETURNING `+contractColumns,
		tenantID, c.ID, c.Role, c.SigningBonus, c.EmployeeSignedAt, nullIfEmpty(c.EmployeeSignatureURL), c.EmployerSignedAt))
	if err != nil && !errors.Is(err, ErrContractNotFound) {
		return nil, fmt.Errorf("recruitment: update contract %s: %w", c.ID, err)
	}
	return updated, err
}

func (s *Store) ListContracts(ctx context.Context, tenantID string, limit, offset int) ([]Contract, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM contracts WHERE tenant_id = $1", tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+contractColumns+`
    FROM contracts
    WHERE tenant_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (s *Store) FindOffer(ctx context.Context, tenantID, id string) (*Offer, error) {
	var o Offer
	err := s.DB.QueryRow(ctx, `
    SELECT id, application_id, candidate_id, hr_employee_id, role, signing_bonus, status, created_at
    FROM offers
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id).Scan(&o.ID, &o.ApplicationID, &o.CandidateID, &o.HREmployeeID, &o.Role, &o.SigningBonus, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) FindApplication(ctx context.Context, tenantID, id string) (*Application, error) {
	var a Application
	err := s.DB.QueryRow(ctx, `
    SELECT id, candidate_id, position, status, created_at, updated_at
    FROM applications
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id).Scan(&a.ID, &a.CandidateID, &a.Position, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) UpdateApplicationStatus(ctx context.Context, tenantID, id, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE applications SET status = $3, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id, status)
	if err != nil {
		return fmt.Errorf("recruitment: update application %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (s *Store) CreateApplication(ctx context.Context, tenantID string, in ApplicationInput) (*Application, error) {
	var a Application
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO applications (tenant_id, candidate_id, position, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id, candidate_id, position, status, created_at, updated_at
  `, tenantID, in.CandidateID, in.Position, ApplicationStatusSubmitted).Scan(&a.ID, &a.CandidateID, &a.Position, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("recruitment: create application: %w", err)
	}
	return &a, nil
}

// CreateOffer records the offer and moves its application to offered.
func (s *Store) CreateOffer(ctx context.Context, tenantID string, in OfferInput) (*Offer, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var candidateID string
	err = tx.QueryRow(ctx, "SELECT candidate_id FROM applications WHERE tenant_id = $1 AND id = $2 FOR UPDATE", tenantID, in.ApplicationID).Scan(&candidateID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}

	var o Offer
	if err := tx.QueryRow(ctx, `
    INSERT INTO offers (tenant_id, application_id, candidate_id, hr_employee_id, role, signing_bonus, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id, application_id, candidate_id, hr_employee_id, role, signing_bonus, status, created_at
  `, tenantID, in.ApplicationID, candidateID, in.HREmployeeID, in.Role, in.SigningBonus, OfferStatusPending).Scan(
		&o.ID, &o.ApplicationID, &o.CandidateID, &o.HREmployeeID, &o.Role, &o.SigningBonus, &o.Status, &o.CreatedAt); err != nil {
		return nil, fmt.Errorf("recruitment: create offer: %w", err)
	}
	if _, err := tx.Exec(ctx, "UPDATE applications SET status = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2",
		tenantID, in.ApplicationID, ApplicationStatusOffered); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

// AcceptOffer marks a pending offer accepted and creates its unsigned contract.
func (s *Store) AcceptOffer(ctx context.Context, tenantID, offerID string) (*Contract, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status, role string
	var bonus *float64
	err = tx.QueryRow(ctx, `
    SELECT status, role, signing_bonus FROM offers
    WHERE tenant_id = $1 AND id = $2
    FOR UPDATE
  `, tenantID, offerID).Scan(&status, &role, &bonus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	if status != OfferStatusPending {
		return nil, ErrOfferNotPending
	}

	if _, err := tx.Exec(ctx, "UPDATE offers SET status = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2",
		tenantID, offerID, OfferStatusAccepted); err != nil {
		return nil, err
	}
	contract, err := scanContract(tx.QueryRow(ctx, `
    INSERT INTO contracts (tenant_id, offer_id, role, signing_bonus)
    VALUES ($1,$2,$3,$4)
    RETURNING `+contractColumns, tenantID, offerID, role, bonus))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrContractExists
		}
		return nil, fmt.Errorf("recruitment: create contract: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return contract, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
