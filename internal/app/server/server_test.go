package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hireflow/internal/app/server"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/domain/onboarding"
	"hireflow/internal/domain/payroll"
	"hireflow/internal/platform/config"
	"hireflow/internal/platform/db/dbtest"
	"hireflow/internal/platform/jobs"
	"hireflow/internal/platform/metrics"
	"hireflow/internal/transport/http/api"
)

func testConfig() config.Config {
	return config.Config{
		Addr:               ":0",
		JWTSecret:          "integration-secret",
		Environment:        "test",
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
		WorkEmailDomain:    "company.com",
		InitialPassword:    "Welcome@2024",
		HolderPolicy:       "first_listed",
	}
}

type client struct {
	t   *testing.T
	url string
}

func (c client) do(method, path, token string, body any, headers map[string]string) (int, api.Envelope) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.url+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env api.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func (c client) login(email string) string {
	c.t.Helper()
	status, env := c.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "Password123"}, nil)
	if status != http.StatusOK {
		c.t.Fatalf("login %s: status %d %+v", email, status, env.Error)
	}
	return env.Data.(map[string]any)["token"].(string)
}

func field(t *testing.T, env api.Envelope, key string) string {
	t.Helper()
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data: %#v", env.Data)
	}
	value, _ := data[key].(string)
	return value
}

func TestContractCompletionProvisionsNewHire(t *testing.T) {
	d := dbtest.Start(t)
	hrID := d.User(t, auth.RoleHR, "hr@hireflow.test")
	candidateID := d.User(t, auth.RoleCandidate, "candidate@hireflow.test")
	payrollID := d.User(t, auth.RolePayrollManager, "payroll@hireflow.test")
	d.User(t, auth.RoleSystemAdmin, "sysadmin@hireflow.test")

	app, err := server.NewWithPool(testConfig(), d.Pool)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	c := client{t: t, url: ts.URL}

	hr := c.login("hr@hireflow.test")
	candidate := c.login("candidate@hireflow.test")
	payrollMgr := c.login("payroll@hireflow.test")

	status, env := c.do(http.MethodPost, "/api/v1/payroll/runs", payrollMgr, map[string]string{"payrollPeriod": "2024-03-31"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create run: %d %+v", status, env.Error)
	}
	runID := field(t, env, "id")

	status, env = c.do(http.MethodPost, "/api/v1/applications", hr, map[string]string{"candidateId": candidateID, "position": "Engineer"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create application: %d %+v", status, env.Error)
	}
	applicationID := field(t, env, "id")

	status, env = c.do(http.MethodPost, "/api/v1/offers", hr, map[string]any{
		"applicationId": applicationID,
		"hrEmployeeId":  hrID,
		"role":          "Engineer",
		"signingBonus":  5000,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create offer: %d %+v", status, env.Error)
	}
	offerID := field(t, env, "id")

	status, env = c.do(http.MethodPost, "/api/v1/offers/"+offerID+"/accept", candidate, nil, map[string]string{"Idempotency-Key": "accept-1"})
	if status != http.StatusCreated {
		t.Fatalf("accept offer: %d %+v", status, env.Error)
	}
	contractID := field(t, env, "id")

	status, _ = c.do(http.MethodPost, "/api/v1/offers/"+offerID+"/accept", candidate, nil, map[string]string{"Idempotency-Key": "accept-1"})
	if status != http.StatusCreated {
		t.Fatalf("replayed accept: %d", status)
	}

	status, env = c.do(http.MethodPatch, "/api/v1/contracts/"+contractID, hr, map[string]string{"employerSignedAt": "2024-03-15T10:00:00Z"}, nil)
	if status != http.StatusOK {
		t.Fatalf("employer signature: %d %+v", status, env.Error)
	}

	status, env = c.do(http.MethodPatch, "/api/v1/contracts/"+contractID, candidate, map[string]string{"employeeSignatureUrl": "https://files.hireflow.test/sig.png"}, nil)
	if status != http.StatusOK {
		t.Fatalf("employee signature: %d %+v", status, env.Error)
	}
	if field(t, env, "employeeSignedAt") == "" {
		t.Fatal("expected employee signature time to be stamped")
	}

	status, env = c.do(http.MethodGet, "/api/v1/applications/"+applicationID, hr, nil, nil)
	if status != http.StatusOK || field(t, env, "status") != "HIRED" {
		t.Fatalf("expected hired application, got %d %+v", status, env.Data)
	}

	status, env = c.do(http.MethodGet, "/api/v1/payroll/runs", payrollMgr, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("list runs: %d", status)
	}
	runs := env.Data.([]any)
	var found bool
	for _, raw := range runs {
		run := raw.(map[string]any)
		if run["id"] == runID {
			found = true
			if run["status"] != payroll.RunStatusUnderReview || run["payrollSpecialistId"] != payrollID {
				t.Fatalf("expected run under review by payroll manager, got %+v", run)
			}
		}
	}
	if !found {
		t.Fatalf("run %s missing from %+v", runID, runs)
	}

	status, env = c.do(http.MethodGet, "/api/v1/payroll/signing-bonuses", payrollMgr, nil, nil)
	if status != http.StatusOK || len(env.Data.([]any)) != 1 {
		t.Fatalf("expected one signing bonus, got %d %+v", status, env.Data)
	}
	bonus := env.Data.([]any)[0].(map[string]any)
	if bonus["status"] != payroll.BonusStatusApproved {
		t.Fatalf("expected approved bonus, got %+v", bonus)
	}

	status, env = c.do(http.MethodGet, "/api/v1/employees", hr, nil, nil)
	if status != http.StatusOK || len(env.Data.([]any)) != 1 {
		t.Fatalf("expected one provisioned employee, got %d %+v", status, env.Data)
	}
	hire := env.Data.([]any)[0].(map[string]any)
	if hire["email"] == "" || hire["employeeNumber"] == "" {
		t.Fatalf("unexpected employee %+v", hire)
	}

	status, env = c.do(http.MethodGet, "/api/v1/reports/job-runs?jobType="+onboarding.JobProvisioning, hr, nil, nil)
	if status != http.StatusOK || len(env.Data.([]any)) != 1 {
		t.Fatalf("expected one provisioning run, got %d %+v", status, env.Data)
	}
	if run := env.Data.([]any)[0].(map[string]any); run["status"] != jobs.StatusCompleted {
		t.Fatalf("expected completed provisioning run, got %+v", run)
	}

	status, env = c.do(http.MethodGet, "/api/v1/reports/dashboard/hr", hr, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("hr dashboard: %d %+v", status, env.Error)
	}
	if got := env.Data.(map[string]any)["fullyExecutedContracts"].(float64); got != 1 {
		t.Fatalf("expected one fully executed contract, got %v", got)
	}

	var credentials int
	if err := d.Pool.QueryRow(t.Context(), `
    SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND type = $2
  `, candidateID, notifications.TypeEmployeeCredentials).Scan(&credentials); err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if credentials != 1 {
		t.Fatalf("expected one credentials notification, got %d", credentials)
	}

	if got := app.Metrics.StepCount(onboarding.StepIdentity, metrics.OutcomeOK); got != 1 {
		t.Fatalf("expected identity step ok once, got %d", got)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	d := dbtest.Start(t)
	app, err := server.NewWithPool(testConfig(), d.Pool)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	var env api.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if env.Data.(map[string]any)["requestsTotal"].(float64) < 2 {
		t.Fatalf("expected earlier requests counted, got %+v", env.Data)
	}
}
