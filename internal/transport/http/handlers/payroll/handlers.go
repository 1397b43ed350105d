package payrollhandler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hireflow/internal/domain/audit"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/payroll"
	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/middleware"
	"hireflow/internal/transport/http/shared"
)

type Payroll interface {
	CreateSigningBonusPolicy(ctx context.Context, tenantID string, in payroll.SigningBonusPolicyInput) (*payroll.SigningBonusPolicy, error)
	ListSigningBonusPolicies(ctx context.Context, tenantID string, limit, offset int) ([]payroll.SigningBonusPolicy, int, error)
	CreateEmployeeSigningBonus(ctx context.Context, tenantID string, in payroll.EmployeeSigningBonusInput) (*payroll.EmployeeSigningBonus, error)
	ApproveSigningBonus(ctx context.Context, tenantID, id string) (*payroll.EmployeeSigningBonus, error)
	ListEmployeeSigningBonuses(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]payroll.EmployeeSigningBonus, int, error)
	CreatePayrollRun(ctx context.Context, tenantID string, period time.Time) (*payroll.PayrollRun, error)
	ListPayrollRuns(ctx context.Context, tenantID string, limit, offset int) ([]payroll.PayrollRun, int, error)
	FindDraftPayrollRunInPeriod(ctx context.Context, tenantID string, start, end time.Time) (*payroll.PayrollRun, error)
	StartPayrollInitiation(ctx context.Context, tenantID string, req payroll.InitiationRequest) (payroll.InitiationResult, error)
}

type Handler struct {
	Service     Payroll
	Perms       middleware.PermissionStore
	Audit       shared.Auditor
	Idempotency middleware.IdempotencyKeeper
}

func NewHandler(service Payroll, perms middleware.PermissionStore, auditor shared.Auditor, idem middleware.IdempotencyKeeper) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(h.Perms, auth.PermPayrollRead)
	configure := middleware.RequirePermission(h.Perms, auth.PermPayrollConfigure)
	approve := middleware.RequirePermission(h.Perms, auth.PermPayrollApprove)
	run := middleware.RequirePermission(h.Perms, auth.PermPayrollRun)

	r.Route("/payroll", func(r chi.Router) {
		r.With(read).Get("/signing-bonus-policies", h.handleListPolicies)
		r.With(configure).Post("/signing-bonus-policies", h.handleCreatePolicy)
		r.With(read).Get("/signing-bonuses", h.handleListBonuses)
		r.With(configure).Post("/signing-bonuses", h.handleCreateBonus)
		r.With(approve).Post("/signing-bonuses/{bonusID}/approve", h.handleApproveBonus)
		r.With(read).Get("/runs", h.handleListRuns)
		r.With(read).Get("/runs/draft", h.handleFindDraftRun)
		r.With(run).Post("/runs", h.handleCreateRun)
		r.With(run).Post("/runs/{runID}/initiate", h.handleInitiateRun)
	})
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	policies, total, err := h.Service.ListSigningBonusPolicies(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		shared.FailDomain(w, middleware.GetRequestID(r.Context()), err, "policy_list_failed", "failed to list signing bonus policies")
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, policies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload payroll.SigningBonusPolicyInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("positionName", payload.PositionName, "is required")
	if payload.Amount <= 0 {
		v.Add("amount", "must be positive")
	}
	v.Enum("status", payload.Status, []string{payroll.PolicyStatusDraft, payroll.PolicyStatusApproved}, "must be draft or approved")
	if v.Reject(w, requestID) {
		return
	}

	policy, err := h.Service.CreateSigningBonusPolicy(r.Context(), user.TenantID, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err, "policy_create_failed", "failed to create signing bonus policy")
		return
	}
	shared.AuditEvent(r, h.Audit, user.TenantID, user.UserID, requestID, audit.ActionPolicyCreate, "signing_bonus_policy", policy.ID, nil, policy)
	api.Created(w, policy, requestID)
}

func (h *Handler) handleListBonuses(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))

	v := shared.NewValidator()
	v.UUID("employeeId", employeeID)
	if v.Reject(w, requestID) {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	bonuses, total, err := h.Service.ListEmployeeSigningBonuses(r.Context(), user.TenantID, employeeID, page.Limit, page.Offset)
	if err != nil {
		shared.FailDomain(w, requestID, err, "bonus_list_failed", "failed to list signing bonuses")
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, bonuses, requestID)
}

func (h *Handler) handleCreateBonus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload payroll.EmployeeSigningBonusInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.UUID("employeeId", payload.EmployeeID)
	v.Required("signingBonusId", payload.SigningBonusID, "is required")
	v.UUID("signingBonusId", payload.SigningBonusID)
	if v.Reject(w, requestID) {
		return
	}

	bonus, err := h.Service.CreateEmployeeSigningBonus(r.Context(), user.TenantID, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err, "bonus_create_failed", "failed to create signing bonus")
		return
	}
	api.Created(w, bonus, requestID)
}

func (h *Handler) handleApproveBonus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(r, "bonusID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "signing bonus not found", requestID)
		return
	}

	bonus, err := h.Service.ApproveSigningBonus(r.Context(), user.TenantID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err, "bonus_approve_failed", "failed to approve signing bonus")
		return
	}
	shared.AuditEvent(r, h.Audit, user.TenantID, user.UserID, requestID, audit.ActionBonusApprove, "employee_signing_bonus", id, nil, bonus)
	api.Success(w, bonus, requestID)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	runs, total, err := h.Service.ListPayrollRuns(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		shared.FailDomain(w, middleware.GetRequestID(r.Context()), err, "run_list_failed", "failed to list payroll runs")
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

// handleFindDraftRun looks up the draft run whose period falls inside
// [start, end]; both bounds are dates and end is inclusive.
func (h *Handler) handleFindDraftRun(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	v := shared.NewValidator()
	start, _ := v.Date("start", r.URL.Query().Get("start"))
	end, _ := v.Date("end", r.URL.Query().Get("end"))
	v.DateOrder("start", start, "end", end)
	if v.Reject(w, requestID) {
		return
	}

	run, err := h.Service.FindDraftPayrollRunInPeriod(r.Context(), user.TenantID, start.UTC(), end.UTC().Add(24*time.Hour-time.Millisecond))
	if err != nil {
		shared.FailDomain(w, requestID, err, "run_lookup_failed", "failed to look up payroll run")
		return
	}
	if run == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "no draft payroll run in period", requestID)
		return
	}
	api.Success(w, run, requestID)
}

type createRunRequest struct {
	PayrollPeriod string `json:"payrollPeriod"`
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload createRunRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	period, _ := v.Date("payrollPeriod", payload.PayrollPeriod)
	if v.Reject(w, requestID) {
		return
	}

	run, err := h.Service.CreatePayrollRun(r.Context(), user.TenantID, period)
	if err != nil {
		shared.FailDomain(w, requestID, err, "run_create_failed", "failed to create payroll run")
		return
	}
	shared.AuditEvent(r, h.Audit, user.TenantID, user.UserID, requestID, audit.ActionRunCreate, "payroll_run", run.ID, nil, run)
	api.Created(w, run, requestID)
}

type initiateRequest struct {
	PayrollSpecialistID string `json:"payrollSpecialistId"`
}

// handleInitiateRun moves a draft run under review. The specialist defaults
// to the caller.
func (h *Handler) handleInitiateRun(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	runID, ok := shared.PathUUID(r, "runID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll run not found", requestID)
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	var payload initiateRequest
	if len(strings.TrimSpace(string(raw))) > 0 {
		r.Body = io.NopCloser(strings.NewReader(string(raw)))
		if err := shared.DecodeJSON(r, &payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
			return
		}
	}
	specialist := strings.TrimSpace(payload.PayrollSpecialistID)
	if specialist == "" {
		specialist = user.UserID
	}
	v := shared.NewValidator()
	v.UUID("payrollSpecialistId", specialist)
	if v.Reject(w, requestID) {
		return
	}

	hash := middleware.RequestHash([]byte(runID + ":" + specialist))
	middleware.ReplayOrRun(w, r, h.Idempotency, "payroll.initiate", hash, http.StatusOK, func() (any, bool) {
		result, err := h.Service.StartPayrollInitiation(r.Context(), user.TenantID, payroll.InitiationRequest{
			PayrollRunID:        runID,
			PayrollSpecialistID: specialist,
		})
		if err != nil {
			shared.FailDomain(w, requestID, err, "run_initiate_failed", "failed to initiate payroll run")
			return nil, false
		}
		shared.AuditEvent(r, h.Audit, user.TenantID, user.UserID, requestID, audit.ActionRunInitiate, "payroll_run", runID, nil, result.Run)
		return result, true
	})
}
