package notificationshandler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/transport/http/middleware"
)

const notificationID = "6c7d8e9f-0a1b-4c2d-9e3f-4a5b6c7d8e9f"

type fakeNotifications struct {
	items    []notifications.Notification
	read     []string
	settings notifications.Settings
}

func (f *fakeNotifications) List(ctx context.Context, tenantID, userID string, limit, offset int) ([]notifications.Notification, error) {
	return f.items, nil
}

func (f *fakeNotifications) Count(ctx context.Context, tenantID, userID string) (int, error) {
	return len(f.items), nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, tenantID, userID, id string) error {
	if id != notificationID {
		return notifications.ErrNotificationNotFound
	}
	f.read = append(f.read, id)
	return nil
}

func (f *fakeNotifications) GetSettings(ctx context.Context, tenantID string) (notifications.Settings, error) {
	return f.settings, nil
}

func (f *fakeNotifications) UpdateSettings(ctx context.Context, tenantID string, settings notifications.Settings) error {
	f.settings = settings
	return nil
}

type rolePerms map[string]bool

func (p rolePerms) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return p[roleID], nil
}

func newRouter(svc *fakeNotifications, user *auth.UserContext) http.Handler {
	r := chi.NewRouter()
	if user != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), *user)))
			})
		})
	}
	NewHandler(svc, rolePerms{"hr": true}, nil).RegisterRoutes(r)
	return r
}

func TestListRequiresAuthAndReturnsCount(t *testing.T) {
	svc := &fakeNotifications{items: []notifications.Notification{{ID: notificationID, Type: notifications.TypeContractFullyExecuted}}}

	rec := httptest.NewRecorder()
	newRouter(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	newRouter(svc, &auth.UserContext{UserID: "u1", TenantID: "t1", RoleID: "emp"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("expected total count header, got %q", rec.Header().Get("X-Total-Count"))
	}
}

func TestMarkRead(t *testing.T) {
	svc := &fakeNotifications{}
	router := newRouter(svc, &auth.UserContext{UserID: "u1", TenantID: "t1", RoleID: "emp"})

	cases := []struct {
		id     string
		status int
	}{
		{notificationID, http.StatusOK},
		{"abc", http.StatusNotFound},
		{"11111111-1111-4111-8111-111111111111", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications/"+tc.id+"/read", nil))
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.id, tc.status, rec.Code)
		}
	}
	if len(svc.read) != 1 {
		t.Fatalf("expected one read, got %v", svc.read)
	}
}

func TestSettingsRequireAdmin(t *testing.T) {
	svc := &fakeNotifications{}
	body := `{"emailEnabled":true,"emailFrom":"hr@example.com"}`

	rec := httptest.NewRecorder()
	newRouter(svc, &auth.UserContext{UserID: "u1", TenantID: "t1", RoleID: "emp"}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/notifications/settings", bytes.NewBufferString(body)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	hr := newRouter(svc, &auth.UserContext{UserID: "u2", TenantID: "t1", RoleID: "hr"})
	rec = httptest.NewRecorder()
	hr.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/notifications/settings", bytes.NewBufferString(`{"emailFrom":"nope"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad sender, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	hr.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/notifications/settings", bytes.NewBufferString(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.settings.EmailEnabled || svc.settings.EmailFrom != "hr@example.com" {
		t.Fatalf("settings not stored: %+v", svc.settings)
	}
}
