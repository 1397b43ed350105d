package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/payroll"
	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/middleware"
)

const (
	runID        = "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
	payrollMgrID = "5e6f7a8b-9c0d-4e1f-a2b3-c4d5e6f7a8b9"
)

type fakePayroll struct {
	Payroll
	initiations []payroll.InitiationRequest
	runs        []payroll.PayrollRun
	draft       *payroll.PayrollRun
	lookups     [][2]time.Time
}

func (f *fakePayroll) StartPayrollInitiation(ctx context.Context, tenantID string, req payroll.InitiationRequest) (payroll.InitiationResult, error) {
	if req.PayrollRunID != runID {
		return payroll.InitiationResult{}, fmt.Errorf("payroll: start initiation: %w", payroll.ErrPayrollRunNotFound)
	}
	if len(f.initiations) > 0 {
		return payroll.InitiationResult{}, payroll.ErrInvalidState
	}
	f.initiations = append(f.initiations, req)
	return payroll.InitiationResult{Message: "payroll run for 2024-03-31 is now under review"}, nil
}

func (f *fakePayroll) CreatePayrollRun(ctx context.Context, tenantID string, period time.Time) (*payroll.PayrollRun, error) {
	run := payroll.PayrollRun{ID: runID, PayrollPeriod: period, Status: payroll.RunStatusDraft}
	f.runs = append(f.runs, run)
	return &run, nil
}

func (f *fakePayroll) FindDraftPayrollRunInPeriod(ctx context.Context, tenantID string, start, end time.Time) (*payroll.PayrollRun, error) {
	f.lookups = append(f.lookups, [2]time.Time{start, end})
	return f.draft, nil
}

func (f *fakePayroll) CreateSigningBonusPolicy(ctx context.Context, tenantID string, in payroll.SigningBonusPolicyInput) (*payroll.SigningBonusPolicy, error) {
	return &payroll.SigningBonusPolicy{ID: "p1", PositionName: in.PositionName, Amount: in.Amount, Status: payroll.PolicyStatusDraft}, nil
}

type allowAll struct{}

func (allowAll) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return true, nil
}

type memoryKeeper map[string]json.RawMessage

func (m memoryKeeper) Check(ctx context.Context, tenantID, userID, endpoint, key, hash string) (json.RawMessage, bool, error) {
	raw, ok := m[endpoint+key+hash]
	return raw, ok, nil
}

func (m memoryKeeper) Save(ctx context.Context, tenantID, userID, endpoint, key, hash string, response json.RawMessage) error {
	m[endpoint+key+hash] = response
	return nil
}

func newRouter(svc *fakePayroll) http.Handler {
	user := auth.UserContext{UserID: payrollMgrID, TenantID: "t1", RoleName: auth.RolePayrollManager}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), user)))
		})
	})
	NewHandler(svc, allowAll{}, nil, memoryKeeper{}).RegisterRoutes(r)
	return r
}

func serve(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestInitiateRunDefaultsSpecialistToCaller(t *testing.T) {
	svc := &fakePayroll{}
	rec := serve(newRouter(svc), http.MethodPost, "/payroll/runs/"+runID+"/initiate", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.initiations) != 1 || svc.initiations[0].PayrollSpecialistID != payrollMgrID {
		t.Fatalf("unexpected initiations: %+v", svc.initiations)
	}
}

func TestInitiateRunIdempotentReplay(t *testing.T) {
	svc := &fakePayroll{}
	router := newRouter(svc)
	headers := map[string]string{"Idempotency-Key": "init-1"}

	first := serve(router, http.MethodPost, "/payroll/runs/"+runID+"/initiate", "{}", headers)
	second := serve(router, http.MethodPost, "/payroll/runs/"+runID+"/initiate", "{}", headers)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected both 200, got %d and %d", first.Code, second.Code)
	}
	if len(svc.initiations) != 1 {
		t.Fatalf("expected a single initiation, got %d", len(svc.initiations))
	}

	third := serve(router, http.MethodPost, "/payroll/runs/"+runID+"/initiate", "{}", nil)
	if third.Code != http.StatusConflict {
		t.Fatalf("expected 409 for repeated initiation without key, got %d", third.Code)
	}
}

func TestInitiateRunNotFound(t *testing.T) {
	router := newRouter(&fakePayroll{})
	for _, id := range []string{"nope", "99999999-8888-4777-8666-555555555555"} {
		rec := serve(router, http.MethodPost, "/payroll/runs/"+id+"/initiate", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", id, rec.Code)
		}
	}
}

func TestCreateRunValidatesPeriod(t *testing.T) {
	svc := &fakePayroll{}
	router := newRouter(svc)

	rec := serve(router, http.MethodPost, "/payroll/runs", `{"payrollPeriod":"March"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = serve(router, http.MethodPost, "/payroll/runs", `{"payrollPeriod":"2024-03-31"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := svc.runs[0].PayrollPeriod.Format("2006-01-02"); got != "2024-03-31" {
		t.Fatalf("unexpected period %s", got)
	}
}

func TestFindDraftRunUsesInclusiveDayRange(t *testing.T) {
	svc := &fakePayroll{}
	router := newRouter(svc)

	rec := serve(router, http.MethodGet, "/payroll/runs/draft?start=2024-03-31&end=2024-03-31", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no draft run, got %d", rec.Code)
	}
	bounds := svc.lookups[0]
	if !bounds[1].Equal(time.Date(2024, 3, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)) {
		t.Fatalf("unexpected end bound %s", bounds[1])
	}

	svc.draft = &payroll.PayrollRun{ID: runID, Status: payroll.RunStatusDraft}
	rec = serve(router, http.MethodGet, "/payroll/runs/draft?start=2024-03-01&end=2024-03-31", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = serve(router, http.MethodGet, "/payroll/runs/draft?start=2024-04-01&end=2024-03-01", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", rec.Code)
	}
}

func TestCreatePolicyValidation(t *testing.T) {
	router := newRouter(&fakePayroll{})
	rec := serve(router, http.MethodPost, "/payroll/signing-bonus-policies", `{"positionName":"","amount":0}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var env api.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error == nil || env.Error.Code != "validation_error" || env.Error.Details == nil {
		t.Fatalf("expected validation details, got %+v", env.Error)
	}

	rec = serve(router, http.MethodPost, "/payroll/signing-bonus-policies", `{"positionName":"Engineer","amount":2500}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}
