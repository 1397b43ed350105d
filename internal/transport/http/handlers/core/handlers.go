package corehandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/core"
	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/middleware"
	"hireflow/internal/transport/http/shared"
)

type Employees interface {
	GetEmployee(ctx context.Context, tenantID, id string) (*core.Employee, error)
	ListEmployees(ctx context.Context, tenantID string, limit, offset int) ([]core.Employee, error)
	CountEmployees(ctx context.Context, tenantID string) (int, error)
}

type Handler struct {
	Store Employees
	Perms middleware.PermissionStore
}

func NewHandler(store Employees, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequirePermission(h.Perms, auth.PermEmployeesRead))
		r.Get("/", h.handleListEmployees)
		r.Get("/{employeeID}", h.handleGetEmployee)
	})
}

// seesDirectory reports whether the role may browse other employees.
func seesDirectory(user auth.UserContext) bool {
	switch user.RoleName {
	case auth.RoleHR, auth.RoleSystemAdmin, auth.RolePayrollManager, auth.RoleManager:
		return true
	}
	return false
}

// redact drops the national ID unless the caller is HR, a system admin, or the employee.
func redact(emp *core.Employee, user auth.UserContext) {
	if emp.UserID == user.UserID || user.RoleName == auth.RoleHR || user.RoleName == auth.RoleSystemAdmin {
		return
	}
	emp.NationalID = ""
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	if !seesDirectory(user) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	total, err := h.Store.CountEmployees(r.Context(), user.TenantID)
	if err != nil {
		shared.FailDomain(w, requestID, err, "employee_list_failed", "failed to list employees")
		return
	}
	employees, err := h.Store.ListEmployees(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		shared.FailDomain(w, requestID, err, "employee_list_failed", "failed to list employees")
		return
	}
	for i := range employees {
		redact(&employees[i], user)
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, employees, requestID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	employeeID, ok := shared.PathUUID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}
	emp, err := h.Store.GetEmployee(r.Context(), user.TenantID, employeeID)
	if err != nil {
		shared.FailDomain(w, requestID, err, "employee_get_failed", "failed to load employee")
		return
	}
	if !seesDirectory(user) && emp.UserID != user.UserID {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}

	redact(emp, user)
	api.Success(w, emp, requestID)
}
