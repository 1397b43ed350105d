package notificationshandler

import (
	"context"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hireflow/internal/domain/audit"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/middleware"
	"hireflow/internal/transport/http/shared"
)

type Notifications interface {
	List(ctx context.Context, tenantID, userID string, limit, offset int) ([]notifications.Notification, error)
	Count(ctx context.Context, tenantID, userID string) (int, error)
	MarkRead(ctx context.Context, tenantID, userID, notificationID string) error
	GetSettings(ctx context.Context, tenantID string) (notifications.Settings, error)
	UpdateSettings(ctx context.Context, tenantID string, settings notifications.Settings) error
}

type Handler struct {
	Service Notifications
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
}

func NewHandler(service Notifications, perms middleware.PermissionStore, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequirePermission(h.Perms, auth.PermNotificationsAdmin)
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
		r.With(admin).Get("/settings", h.handleSettings)
		r.With(admin).Put("/settings", h.handleUpdateSettings)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 100, 500)
	total, err := h.Service.Count(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		slog.WarnContext(r.Context(), "notification count failed", "err", err)
	}

	items, err := h.Service.List(r.Context(), user.TenantID, user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "failed to list notifications", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	notificationID, ok := shared.PathUUID(r, "notificationID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "notification not found", requestID)
		return
	}
	if err := h.Service.MarkRead(r.Context(), user.TenantID, user.UserID, notificationID); err != nil {
		shared.FailDomain(w, requestID, err, "notification_update_failed", "failed to update notification")
		return
	}

	api.Success(w, map[string]string{"status": "read"}, requestID)
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	settings, err := h.Service.GetSettings(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to load settings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, settings, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload notifications.Settings
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.EmailFrom != "" {
		if _, err := mail.ParseAddress(payload.EmailFrom); err != nil {
			shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "emailFrom", Reason: "must be a valid email address"}})
			return
		}
	}

	before, err := h.Service.GetSettings(r.Context(), user.TenantID)
	if err != nil {
		slog.WarnContext(r.Context(), "settings lookup before update failed", "err", err)
	}
	if err := h.Service.UpdateSettings(r.Context(), user.TenantID, payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to update settings", requestID)
		return
	}
	shared.AuditEvent(r, h.Audit, user.TenantID, user.UserID, requestID, audit.ActionSettingsUpdate, "tenant_settings", user.TenantID, before, payload)
	api.Success(w, payload, requestID)
}
