package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Tracker records each tracked run in job_runs. Bookkeeping failures are
// logged and never fail the run itself.
type Tracker struct {
	DB *pgxpool.Pool
}

func NewTracker(db *pgxpool.Pool) *Tracker {
	return &Tracker{DB: db}
}

func (t *Tracker) Track(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error) {
	if t == nil || t.DB == nil {
		return run(ctx)
	}

	runID := ""
	if err := t.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenantID, jobType, StatusRunning).Scan(&runID); err != nil {
		slog.WarnContext(ctx, "job run insert failed", "jobType", jobType, "err", err)
	}

	details, err := run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	detailsJSON, marshalErr := json.Marshal(withError(details, err))
	if marshalErr != nil {
		slog.WarnContext(ctx, "job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		// The caller's context may already be cancelled after a long run.
		if _, updErr := t.DB.Exec(context.WithoutCancel(ctx), `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.WarnContext(ctx, "job run update failed", "runId", runID, "err", updErr)
		}
	}
	return details, err
}

func withError(details any, err error) any {
	if err == nil {
		return details
	}
	out := map[string]any{"error": err.Error()}
	if m, ok := details.(map[string]any); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
