package recruitmenthandler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hireflow/internal/domain/audit"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/recruitment"
	"hireflow/internal/platform/requestctx"
	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/middleware"
	"hireflow/internal/transport/http/shared"
)

type Recruitment interface {
	CreateApplication(ctx context.Context, tenantID string, in recruitment.ApplicationInput) (*recruitment.Application, error)
	GetApplication(ctx context.Context, tenantID, id string) (*recruitment.Application, error)
	UpdateApplicationStatus(ctx context.Context, tenantID, id, status string) (*recruitment.Application, error)
	CreateOffer(ctx context.Context, tenantID string, in recruitment.OfferInput) (*recruitment.Offer, error)
	GetOffer(ctx context.Context, tenantID, id string) (*recruitment.Offer, error)
	AcceptOffer(ctx context.Context, tenantID, offerID string) (*recruitment.Contract, error)
	GetContract(ctx context.Context, tenantID, id string) (*recruitment.Contract, error)
	ListContracts(ctx context.Context, tenantID string, limit, offset int) ([]recruitment.Contract, int, error)
	ContractDocument(ctx context.Context, tenantID, contractID string) ([]byte, error)
}

// ContractWorkflow updates a contract and runs whatever follows from it.
type ContractWorkflow interface {
	UpdateContract(ctx context.Context, tenantID, contractID string, update recruitment.ContractUpdate) (*recruitment.Contract, error)
}

type Handler struct {
	Recruitment Recruitment
	Workflow    ContractWorkflow
	Perms       middleware.PermissionStore
	Audit       shared.Auditor
	Idempotency middleware.IdempotencyKeeper
}

func NewHandler(svc Recruitment, workflow ContractWorkflow, perms middleware.PermissionStore, auditor shared.Auditor, idem middleware.IdempotencyKeeper) *Handler {
	return &Handler{Recruitment: svc, Workflow: workflow, Perms: perms, Audit: auditor, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(h.Perms, auth.PermRecruitmentRead)
	write := middleware.RequirePermission(h.Perms, auth.PermRecruitmentWrite)
	sign := middleware.RequirePermission(h.Perms, auth.PermContractsSign)

	r.With(write).Post("/applications", h.handleCreateApplication)
	r.With(read).Get("/applications/{applicationID}", h.handleGetApplication)
	r.With(write).Patch("/applications/{applicationID}/status", h.handleUpdateApplicationStatus)

	r.With(write).Post("/offers", h.handleCreateOffer)
	r.With(read).Get("/offers/{offerID}", h.handleGetOffer)
	r.With(sign).Post("/offers/{offerID}/accept", h.handleAcceptOffer)

	r.With(write).Get("/contracts", h.handleListContracts)
	r.With(read).Get("/contracts/{contractID}", h.handleGetContract)
	r.With(sign).Patch("/contracts/{contractID}", h.handleUpdateContract)
	r.With(read).Get("/contracts/{contractID}/document", h.handleContractDocument)
}

func (h *Handler) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload recruitment.ApplicationInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("candidateId", payload.CandidateID, "is required")
	v.UUID("candidateId", payload.CandidateID)
	v.Required("position", payload.Position, "is required")
	if v.Reject(w, requestID) {
		return
	}

	app, err := h.Recruitment.CreateApplication(r.Context(), user.TenantID, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err, "application_create_failed", "failed to create application")
		return
	}
	shared.AuditEvent(r, h.Audit, user.TenantID, user.UserID, requestID, audit.ActionApplicationCreate, "application", app.ID, nil, app)
	api.Created(w, app, requestID)
}

func (h *Handler) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(r, "applicationID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "application not found", requestID)
		return
	}

	app, err := h.Recruitment.GetApplication(r.Context(), user.TenantID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err, "application_fetch_failed", "failed to load application")
		return
	}
	if user.RoleName == auth.RoleCandidate && app.CandidateID != user.UserID {
		api.Fail(w, http.StatusNotFound, "not_found", "application not found", requestID)
		return
	}
	api.Success(w, app, requestID)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(r, "applicationID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "application not found", requestID)
		return
	}

	var payload statusRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("status", payload.Status, "is required")
	if v.Reject(w, requestID) {
		return
	}

	app, err := h.Recruitment.UpdateApplicationStatus(r.Context(), user.TenantID, id, strings.TrimSpace(payload.Status))
	if err != nil {
		shared.FailDomain(w, requestID, err, "application_update_failed", "failed to update application")
		return
	}
	shared.AuditEvent(r, h.Audit, user.TenantID, user.UserID, requestID, audit.ActionApplicationStatus, "application", id, nil, app)
	api.Success(w, app, requestID)
}

func (h *Handler) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload recruitment.OfferInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("applicationId", payload.ApplicationID, "is required")
	v.UUID("applicationId", payload.ApplicationID)
	v.Required("hrEmployeeId", payload.HREmployeeID, "is required")
	v.UUID("hrEmployeeId", payload.HREmployeeID)
	v.Required("role", payload.Role, "is required")
	if payload.SigningBonus != nil {
		v.NonNegative("signingBonus", *payload.SigningBonus)
	}
	if v.Reject(w, requestID) {
		return
	}

	offer, err := h.Recruitment.CreateOffer(r.Context(), user.TenantID, payload)
	if err != nil {
		shared.FailDomain(w, requestID, err, "offer_create_failed", "failed to create offer")
		return
	}
	shared.AuditEvent(r, h.Audit, user.TenantID, user.UserID, requestID, audit.ActionOfferCreate, "offer", offer.ID, nil, offer)
	api.Created(w, offer, requestID)
}

func (h *Handler) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	offer, ok := h.loadOffer(w, r, user)
	if !ok {
		return
	}
	api.Success(w, offer, requestID)
}

func (h *Handler) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	offer, ok := h.loadOffer(w, r, user)
	if !ok {
		return
	}

	hash := middleware.RequestHash([]byte("accept:" + offer.ID))
	middleware.ReplayOrRun(w, r, h.Idempotency, "offers.accept", hash, http.StatusCreated, func() (any, bool) {
		contract, err := h.Recruitment.AcceptOffer(r.Context(), user.TenantID, offer.ID)
		if err != nil {
			shared.FailDomain(w, requestID, err, "offer_accept_failed", "failed to accept offer")
			return nil, false
		}
		shared.AuditEvent(r, h.Audit, user.TenantID, user.UserID, requestID, audit.ActionOfferAccept, "offer", offer.ID, offer, contract)
		return contract, true
	})
}

// loadOffer fetches the offer named in the path. Candidates only see their
// own offers; anything else reads as not found.
func (h *Handler) loadOffer(w http.ResponseWriter, r *http.Request, user auth.UserContext) (*recruitment.Offer, bool) {
	requestID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(r, "offerID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "offer not found", requestID)
		return nil, false
	}
	offer, err := h.Recruitment.GetOffer(r.Context(), user.TenantID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err, "offer_fetch_failed", "failed to load offer")
		return nil, false
	}
	if user.RoleName == auth.RoleCandidate && offer.CandidateID != user.UserID {
		api.Fail(w, http.StatusNotFound, "not_found", "offer not found", requestID)
		return nil, false
	}
	return offer, true
}

func (h *Handler) handleListContracts(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	contracts, total, err := h.Recruitment.ListContracts(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		shared.FailDomain(w, requestID, err, "contract_list_failed", "failed to list contracts")
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, contracts, requestID)
}

func (h *Handler) handleGetContract(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	contract, ok := h.loadContract(w, r, user)
	if !ok {
		return
	}
	api.Success(w, contract, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateContract(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	before, ok := h.loadContract(w, r, user)
	if !ok {
		return
	}

	var update recruitment.ContractUpdate
	if err := shared.DecodeJSON(r, &update); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if update.Empty() {
		api.Fail(w, http.StatusBadRequest, "validation_error", "no contract fields to update", requestID)
		return
	}
	if user.RoleName == auth.RoleCandidate && !update.EmployeeFieldsOnly() {
		api.Fail(w, http.StatusForbidden, "forbidden", "candidates may only sign their contract", requestID)
		return
	}

	v := shared.NewValidator()
	if update.Role != nil {
		v.Required("role", *update.Role, "must not be blank")
	}
	if update.SigningBonus != nil {
		v.NonNegative("signingBonus", *update.SigningBonus)
	}
	if update.EmployeeSignatureURL != nil {
		if strings.TrimSpace(*update.EmployeeSignatureURL) == "" {
			v.Add("employeeSignatureUrl", "must not be blank")
		} else if parsed, err := url.ParseRequestURI(*update.EmployeeSignatureURL); err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") {
			v.Add("employeeSignatureUrl", "must be an http or https url")
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	after, err := h.Workflow.UpdateContract(r.Context(), user.TenantID, before.ID, update)
	if err != nil {
		shared.FailDomain(w, requestID, err, "onboarding_failed", "contract update could not be completed")
		return
	}
	shared.AuditEvent(r, h.Audit, user.TenantID, user.UserID, requestID, audit.ActionContractUpdate, "contract", before.ID, before, after)
	api.Success(w, after, requestID)
}

func (h *Handler) handleContractDocument(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	contract, ok := h.loadContract(w, r, user)
	if !ok {
		return
	}

	doc, err := h.Recruitment.ContractDocument(r.Context(), user.TenantID, contract.ID)
	if err != nil {
		shared.FailDomain(w, requestID, err, "contract_document_failed", "failed to render contract")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="contract-`+contract.ID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		requestctx.Logger(r.Context()).Warn("contract document write failed", "contractId", contract.ID, "err", err)
	}
}

// loadContract fetches the contract named in the path; candidates are held
// to contracts on their own offers.
func (h *Handler) loadContract(w http.ResponseWriter, r *http.Request, user auth.UserContext) (*recruitment.Contract, bool) {
	requestID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathUUID(r, "contractID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "contract not found", requestID)
		return nil, false
	}
	contract, err := h.Recruitment.GetContract(r.Context(), user.TenantID, id)
	if err != nil {
		shared.FailDomain(w, requestID, err, "contract_fetch_failed", "failed to load contract")
		return nil, false
	}
	if user.RoleName != auth.RoleCandidate {
		return contract, true
	}
	offer, err := h.Recruitment.GetOffer(r.Context(), user.TenantID, contract.OfferID)
	if err != nil || offer.CandidateID != user.UserID {
		api.Fail(w, http.StatusNotFound, "not_found", "contract not found", requestID)
		return nil, false
	}
	return contract, true
}
