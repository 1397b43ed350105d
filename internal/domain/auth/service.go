package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pquerna/otp/totp"

	"hireflow/internal/domain/core"
	cryptoutil "hireflow/internal/platform/crypto"
)

const SessionTTL = 8 * time.Hour

type Service struct {
	Store     StoreAPI
	Employees EmployeeWriter
	Crypto    *cryptoutil.Service
}

func NewService(store StoreAPI, employees EmployeeWriter, crypto *cryptoutil.Service) *Service {
	return &Service{Store: store, Employees: employees, Crypto: crypto}
}

// Registration carries everything needed to provision a new employee login.
type Registration struct {
	EmployeeNumber string
	WorkEmail      string
	Password       string
	FirstName      string
	LastName       string
	NationalID     string
	DateOfHire     time.Time
}

func (r Registration) validate() error {
	switch {
	case strings.TrimSpace(r.EmployeeNumber) == "":
		return fmt.Errorf("%w: employee number is required", ErrInvalidRegistration)
	case strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "":
		return fmt.Errorf("%w: names are required", ErrInvalidRegistration)
	case r.DateOfHire.IsZero():
		return fmt.Errorf("%w: date of hire is required", ErrInvalidRegistration)
	case len(r.Password) < 8:
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidRegistration)
	}
	if _, err := mail.ParseAddress(r.WorkEmail); err != nil {
		return fmt.Errorf("%w: work email is invalid", ErrInvalidRegistration)
	}
	return nil
}

// Register creates the login user and employee record atomically and returns the employee id.
func (s *Service) Register(ctx context.Context, tenantID string, reg Registration) (string, error) {
	if err := reg.validate(); err != nil {
		return "", err
	}
	hash, err := HashPassword(reg.Password)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	roleID, err := s.Store.RoleID(ctx, tenantID, RoleEmployee)
	if err != nil {
		return "", fmt.Errorf("auth: resolve employee role: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(reg.WorkEmail))
	var employeeID string
	err = s.Store.WithTx(ctx, func(tx pgx.Tx) error {
		userID, err := s.Store.CreateUserTx(ctx, tx, tenantID, roleID, email, hash)
		if err != nil {
			return err
		}
		employeeID, err = s.Employees.CreateEmployeeTx(ctx, tx, tenantID, core.NewHire{
			UserID:         userID,
			EmployeeNumber: reg.EmployeeNumber,
			FirstName:      reg.FirstName,
			LastName:       reg.LastName,
			Email:          email,
			NationalID:     reg.NationalID,
			StartDate:      reg.DateOfHire,
		})
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrIdentityExists
		}
		return "", fmt.Errorf("auth: register %s: %w", email, err)
	}
	return employeeID, nil
}

func (s *Service) FindUsersByRole(ctx context.Context, tenantID, role string) ([]Identity, error) {
	users, err := s.Store.ListUsersByRole(ctx, tenantID, role)
	if err != nil {
		return nil, fmt.Errorf("auth: list users with role %q: %w", role, err)
	}
	return users, nil
}

// Authenticate checks the password and, when enabled, the TOTP code.
func (s *Service) Authenticate(ctx context.Context, email, password, mfaCode string) (AuthUser, error) {
	user, err := s.Store.FindActiveUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return AuthUser{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return AuthUser{}, ErrInvalidCredentials
	}
	if !user.MFAEnabled {
		return user, nil
	}
	if mfaCode == "" {
		return AuthUser{}, ErrMFARequired
	}

	secret := string(user.MFASecretEn)
	if s.Crypto.Configured() {
		secret, err = s.Crypto.DecryptString(user.MFASecretEn)
		if err != nil {
			return AuthUser{}, ErrMFAInvalid
		}
	}
	if secret == "" || !totp.Validate(mfaCode, secret) {
		return AuthUser{}, ErrMFAInvalid
	}
	return user, nil
}

func (s *Service) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return s.Store.HasPermission(ctx, roleID, permission)
}

func (s *Service) CreateSession(ctx context.Context, userID, sessionID string) error {
	return s.Store.CreateSession(ctx, userID, HashToken(sessionID), time.Now().Add(SessionTTL))
}

func (s *Service) UpdateLastLogin(ctx context.Context, userID string) error {
	return s.Store.UpdateLastLogin(ctx, userID)
}

func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	return s.Store.RevokeSession(ctx, userID, HashToken(sessionID))
}

func (s *Service) SessionValid(ctx context.Context, userID, sessionID string) (bool, error) {
	return s.Store.SessionValid(ctx, userID, HashToken(sessionID))
}

func (s *Service) RotateSession(ctx context.Context, userID, oldSessionID, newSessionID string) error {
	return s.Store.RotateSession(ctx, userID, HashToken(oldSessionID), HashToken(newSessionID), time.Now().Add(SessionTTL))
}
