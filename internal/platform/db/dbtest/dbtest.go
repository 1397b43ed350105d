// Package dbtest starts a migrated PostgreSQL database for store tests.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"hireflow/internal/platform/db"
)

// Database is a migrated database with one seeded tenant.
type Database struct {
	Pool     *pgxpool.Pool
	TenantID string
	RoleIDs  map[string]string
}

// Start returns a database for the test, reusing TEST_DATABASE_URL when set and
// otherwise running a postgres:16-alpine container. It skips under -short.
func Start(t *testing.T) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("hireflow"),
			postgres.WithUsername("hireflow"),
			postgres.WithPassword("hireflow"),
		)
		if err != nil {
			t.Skipf("postgres container unavailable: %v", err)
		}
		t.Cleanup(func() {
			_ = container.Terminate(context.Background())
		})
		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("resolve connection string: %v", err)
		}
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := waitReady(ctx, pool); err != nil {
		t.Fatalf("database not ready: %v", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	tenantID, roleIDs, err := db.SeedTenant(ctx, pool, "tenant-"+t.Name())
	if err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return &Database{Pool: pool, TenantID: tenantID, RoleIDs: roleIDs}
}

// User creates an active user with the named role and returns its id.
func (d *Database) User(t *testing.T, role, email string) string {
	t.Helper()
	id, err := db.EnsureUser(context.Background(), d.Pool, d.TenantID, d.RoleIDs[role], email, "Password123")
	if err != nil {
		t.Fatalf("create %s user: %v", role, err)
	}
	return id
}

func waitReady(ctx context.Context, pool *pgxpool.Pool) error {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		err := pool.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-ticker.C:
		}
	}
}
