package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hireflow/internal/domain/auth"
	"hireflow/internal/platform/config"
)

// Seed provisions the default tenant, the role catalogue and the optional
// bootstrap users named in cfg. It is safe to run repeatedly.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, roleIDs, err := SeedTenant(ctx, pool, cfg.SeedTenantName)
	if err != nil {
		return err
	}

	users := []struct {
		role, email, password string
	}{
		{auth.RoleHR, cfg.SeedAdminEmail, cfg.SeedAdminPassword},
		{auth.RoleSystemAdmin, cfg.SeedSystemAdminEmail, cfg.SeedSystemAdminPassword},
		{auth.RolePayrollManager, cfg.SeedPayrollEmail, cfg.SeedPayrollPassword},
	}
	for _, u := range users {
		if _, err := EnsureUser(ctx, pool, tenantID, roleIDs[u.role], u.email, u.password); err != nil {
			return fmt.Errorf("db: seed %s user: %w", u.role, err)
		}
	}
	return nil
}

// SeedTenant ensures the tenant, permissions, roles and role permissions exist
// and returns the tenant id with role ids keyed by role name.
func SeedTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, map[string]string, error) {
	tenantID, err := ensureTenant(ctx, pool, name)
	if err != nil {
		return "", nil, err
	}
	if err := ensurePermissions(ctx, pool); err != nil {
		return "", nil, err
	}
	roleIDs, err := ensureRoles(ctx, pool, tenantID)
	if err != nil {
		return "", nil, err
	}
	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return "", nil, err
	}
	return tenantID, roleIDs, nil
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range auth.DefaultPermissions {
		_, err := pool.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool, tenantID string) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, `
    INSERT INTO roles (tenant_id, name) VALUES ($1, $2)
    ON CONFLICT (tenant_id, name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, tenantID, roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := pool.Query(ctx, "SELECT id, key FROM permissions")
	if err != nil {
		return err
	}
	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			rows.Close()
			return err
		}
		permMap[key] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for roleName, perms := range auth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permKey := range perms {
			permID, ok := permMap[permKey]
			if !ok {
				return errors.New("permission not found: " + permKey)
			}
			_, err := pool.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// EnsureUser creates an active user with the role unless the email exists.
// Blank credentials are skipped.
func EnsureUser(ctx context.Context, pool *pgxpool.Pool, tenantID, roleID, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return "", nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE tenant_id = $1 AND email = $2", tenantID, email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	err = pool.QueryRow(ctx, "INSERT INTO users (tenant_id, email, password_hash, role_id) VALUES ($1, $2, $3, $4) RETURNING id", tenantID, email, hash, roleID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
