package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pquerna/otp/totp"

	"hireflow/internal/domain/core"
)

type fakeStore struct {
	StoreAPI
	users     map[string]AuthUser
	byRole    map[string][]Identity
	roles     map[string]string
	created   []string
	createErr error
	committed bool
}

func (f *fakeStore) FindActiveUserByEmail(_ context.Context, email string) (AuthUser, error) {
	user, ok := f.users[email]
	if !ok {
		return AuthUser{}, ErrInvalidCredentials
	}
	return user, nil
}

func (f *fakeStore) RoleID(_ context.Context, _ string, roleName string) (string, error) {
	id, ok := f.roles[roleName]
	if !ok {
		return "", ErrRoleNotFound
	}
	return id, nil
}

func (f *fakeStore) ListUsersByRole(_ context.Context, _ string, roleName string) ([]Identity, error) {
	return f.byRole[roleName], nil
}

func (f *fakeStore) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	if err := fn(nil); err != nil {
		return err
	}
	f.committed = true
	return nil
}

func (f *fakeStore) CreateUserTx(_ context.Context, _ pgx.Tx, _ string, roleID, email, passwordHash string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	if roleID != "role-employee" {
		return "", errors.New("unexpected role")
	}
	if CheckPassword(passwordHash, "Welcome@2024") != nil {
		return "", errors.New("password was not hashed from the input")
	}
	f.created = append(f.created, email)
	return "user-1", nil
}

type fakeEmployees struct {
	hires []core.NewHire
}

func (f *fakeEmployees) CreateEmployeeTx(_ context.Context, _ pgx.Tx, _ string, hire core.NewHire) (string, error) {
	f.hires = append(f.hires, hire)
	return "emp-1", nil
}

func validRegistration() Registration {
	return Registration{
		EmployeeNumber: "EMP-1234",
		WorkEmail:      "EMP-1234@company.com",
		Password:       "Welcome@2024",
		FirstName:      "--",
		LastName:       "--",
		NationalID:     "NAT-EMP-1234",
		DateOfHire:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegisterCreatesUserAndEmployee(t *testing.T) {
	store := &fakeStore{roles: map[string]string{RoleEmployee: "role-employee"}}
	employees := &fakeEmployees{}
	svc := NewService(store, employees, nil)

	id, err := svc.Register(context.Background(), "tenant-1", validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id != "emp-1" {
		t.Fatalf("expected employee id emp-1, got %q", id)
	}
	if !store.committed {
		t.Fatal("expected registration to commit")
	}
	if len(store.created) != 1 || store.created[0] != "emp-1234@company.com" {
		t.Fatalf("expected lowercased email, got %v", store.created)
	}
	if len(employees.hires) != 1 {
		t.Fatalf("expected one employee insert, got %d", len(employees.hires))
	}
	hire := employees.hires[0]
	if hire.UserID != "user-1" || hire.NationalID != "NAT-EMP-1234" || hire.EmployeeNumber != "EMP-1234" {
		t.Fatalf("unexpected hire: %+v", hire)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := &fakeStore{
		roles:     map[string]string{RoleEmployee: "role-employee"},
		createErr: &pgconn.PgError{Code: "23505"},
	}
	svc := NewService(store, &fakeEmployees{}, nil)

	_, err := svc.Register(context.Background(), "tenant-1", validRegistration())
	if !errors.Is(err, ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}
	if store.committed {
		t.Fatal("expected no commit on duplicate")
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registration)
	}{
		{name: "missing number", mutate: func(r *Registration) { r.EmployeeNumber = "" }},
		{name: "bad email", mutate: func(r *Registration) { r.WorkEmail = "not-an-email" }},
		{name: "short password", mutate: func(r *Registration) { r.Password = "short" }},
		{name: "missing hire date", mutate: func(r *Registration) { r.DateOfHire = time.Time{} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := validRegistration()
			tc.mutate(&reg)
			svc := NewService(&fakeStore{roles: map[string]string{RoleEmployee: "role-employee"}}, &fakeEmployees{}, nil)
			if _, err := svc.Register(context.Background(), "tenant-1", reg); !errors.Is(err, ErrInvalidRegistration) {
				t.Fatalf("expected ErrInvalidRegistration, got %v", err)
			}
		})
	}
}

func TestRegisterMissingEmployeeRole(t *testing.T) {
	svc := NewService(&fakeStore{roles: map[string]string{}}, &fakeEmployees{}, nil)
	if _, err := svc.Register(context.Background(), "tenant-1", validRegistration()); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestFindUsersByRoleKeepsOrder(t *testing.T) {
	store := &fakeStore{byRole: map[string][]Identity{
		RolePayrollManager: {{ID: "pm-2"}, {ID: "pm-1"}},
	}}
	svc := NewService(store, nil, nil)

	users, err := svc.FindUsersByRole(context.Background(), "tenant-1", RolePayrollManager)
	if err != nil {
		t.Fatalf("find users: %v", err)
	}
	if len(users) != 2 || users[0].ID != "pm-2" {
		t.Fatalf("expected store order, got %+v", users)
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := HashPassword("Correct123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "hireflow", AccountName: "mfa@example.com"})
	if err != nil {
		t.Fatalf("totp generate: %v", err)
	}
	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("totp code: %v", err)
	}

	store := &fakeStore{users: map[string]AuthUser{
		"plain@example.com": {ID: "u1", Password: hash},
		"mfa@example.com":   {ID: "u2", Password: hash, MFAEnabled: true, MFASecretEn: []byte(key.Secret())},
	}}
	svc := NewService(store, nil, nil)

	tests := []struct {
		name     string
		email    string
		password string
		code     string
		wantErr  error
	}{
		{name: "valid", email: "Plain@Example.com", password: "Correct123"},
		{name: "wrong password", email: "plain@example.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown user", email: "ghost@example.com", password: "Correct123", wantErr: ErrInvalidCredentials},
		{name: "mfa missing", email: "mfa@example.com", password: "Correct123", wantErr: ErrMFARequired},
		{name: "mfa wrong", email: "mfa@example.com", password: "Correct123", code: "000000x", wantErr: ErrMFAInvalid},
		{name: "mfa valid", email: "mfa@example.com", password: "Correct123", code: code},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tc.email, tc.password, tc.code)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
