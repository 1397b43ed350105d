package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"hireflow/internal/domain/core"
)

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
	RoleID(ctx context.Context, tenantID, roleName string) (string, error)
	ListUsersByRole(ctx context.Context, tenantID, roleName string) ([]Identity, error)
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	CreateUserTx(ctx context.Context, tx pgx.Tx, tenantID, roleID, email, passwordHash string) (string, error)
	CreateSession(ctx context.Context, userID, refreshTokenHash string, expires time.Time) error
	UpdateLastLogin(ctx context.Context, userID string) error
	RevokeSession(ctx context.Context, userID, refreshTokenHash string) error
	SessionValid(ctx context.Context, userID, refreshTokenHash string) (bool, error)
	RotateSession(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error
}

type EmployeeWriter interface {
	CreateEmployeeTx(ctx context.Context, tx pgx.Tx, tenantID string, hire core.NewHire) (string, error)
}
