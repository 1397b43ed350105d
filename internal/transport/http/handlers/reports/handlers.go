package reportshandler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/reports"
	"hireflow/internal/platform/jobs"
	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/middleware"
	"hireflow/internal/transport/http/shared"
)

type Reports interface {
	PipelineDashboard(ctx context.Context, tenantID string) (reports.PipelineDashboard, error)
	PayrollDashboard(ctx context.Context, tenantID string) (reports.PayrollDashboard, error)
	ListJobRuns(ctx context.Context, tenantID string, filter reports.JobRunFilter, limit, offset int) ([]reports.JobRun, error)
	CountJobRuns(ctx context.Context, tenantID string, filter reports.JobRunFilter) (int, error)
	GetJobRun(ctx context.Context, tenantID, runID string) (*reports.JobRun, error)
}

type Handler struct {
	Service Reports
	Perms   middleware.PermissionStore
}

func NewHandler(service Reports, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(h.Perms, auth.PermRecruitmentWrite)).Get("/dashboard/hr", h.handleHRDashboard)
		r.With(middleware.RequirePermission(h.Perms, auth.PermPayrollRead)).Get("/dashboard/payroll", h.handlePayrollDashboard)
		r.Route("/job-runs", func(r chi.Router) {
			r.Use(middleware.RequirePermission(h.Perms, auth.PermSystemAdmin, auth.PermRecruitmentWrite))
			r.Get("/", h.handleListJobRuns)
			r.Get("/{runID}", h.handleGetJobRun)
		})
	})
}

func (h *Handler) handleHRDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	dashboard, err := h.Service.PipelineDashboard(r.Context(), user.TenantID)
	if err != nil {
		shared.FailDomain(w, requestID, err, "report_failed", "failed to build dashboard")
		return
	}
	api.Success(w, dashboard, requestID)
}

func (h *Handler) handlePayrollDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	dashboard, err := h.Service.PayrollDashboard(r.Context(), user.TenantID)
	if err != nil {
		shared.FailDomain(w, requestID, err, "report_failed", "failed to build dashboard")
		return
	}
	api.Success(w, dashboard, requestID)
}

func (h *Handler) handleListJobRuns(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	query := r.URL.Query()
	filter := reports.JobRunFilter{
		JobType: strings.TrimSpace(query.Get("jobType")),
		Status:  strings.TrimSpace(query.Get("status")),
	}
	v := shared.NewValidator()
	v.Enum("status", filter.Status, []string{jobs.StatusRunning, jobs.StatusCompleted, jobs.StatusFailed}, "must be running, completed or failed")
	if raw := query.Get("startedFrom"); raw != "" {
		if from, ok := v.Date("startedFrom", raw); ok {
			filter.StartedFrom = &from
		}
	}
	if raw := query.Get("startedTo"); raw != "" {
		if to, ok := v.Date("startedTo", raw); ok {
			// Whole-day bound.
			end := to.Add(24*time.Hour - time.Nanosecond)
			filter.StartedTo = &end
		}
	}
	if filter.StartedFrom != nil && filter.StartedTo != nil {
		v.DateOrder("startedFrom", *filter.StartedFrom, "startedTo", *filter.StartedTo)
	}
	if v.Reject(w, requestID) {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	total, err := h.Service.CountJobRuns(r.Context(), user.TenantID, filter)
	if err != nil {
		shared.FailDomain(w, requestID, err, "job_runs_failed", "failed to list job runs")
		return
	}
	runs, err := h.Service.ListJobRuns(r.Context(), user.TenantID, filter, page.Limit, page.Offset)
	if err != nil {
		shared.FailDomain(w, requestID, err, "job_runs_failed", "failed to list job runs")
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, runs, requestID)
}

func (h *Handler) handleGetJobRun(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	runID, ok := shared.PathUUID(r, "runID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "job run not found", requestID)
		return
	}
	run, err := h.Service.GetJobRun(r.Context(), user.TenantID, runID)
	if err != nil {
		shared.FailDomain(w, requestID, err, "job_run_failed", "failed to load job run")
		return
	}
	api.Success(w, run, requestID)
}
