package onboarding

import (
	"context"
	"errors"
	"time"

	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/domain/payroll"
	"hireflow/internal/domain/recruitment"
	"hireflow/internal/platform/metrics"
)

type fakeContracts struct {
	contracts     map[string]recruitment.Contract
	offers        map[string]recruitment.Offer
	applications  map[string]recruitment.Application
	updates       int
	statusUpdates []string
}

func (f *fakeContracts) FindContract(_ context.Context, _, id string) (*recruitment.Contract, error) {
	c, ok := f.contracts[id]
	if !ok {
		return nil, recruitment.ErrContractNotFound
	}
	return &c, nil
}

func (f *fakeContracts) UpdateContract(_ context.Context, _ string, c recruitment.Contract) (*recruitment.Contract, error) {
	if _, ok := f.contracts[c.ID]; !ok {
		return nil, recruitment.ErrContractNotFound
	}
	f.updates++
	f.contracts[c.ID] = c
	return &c, nil
}

func (f *fakeContracts) FindOffer(_ context.Context, _, id string) (*recruitment.Offer, error) {
	o, ok := f.offers[id]
	if !ok {
		return nil, recruitment.ErrOfferNotFound
	}
	return &o, nil
}

func (f *fakeContracts) FindApplication(_ context.Context, _, id string) (*recruitment.Application, error) {
	a, ok := f.applications[id]
	if !ok {
		return nil, recruitment.ErrApplicationNotFound
	}
	return &a, nil
}

func (f *fakeContracts) UpdateApplicationStatus(_ context.Context, _, id, status string) error {
	a, ok := f.applications[id]
	if !ok {
		return recruitment.ErrApplicationNotFound
	}
	a.Status = status
	f.applications[id] = a
	f.statusUpdates = append(f.statusUpdates, id+"="+status)
	return nil
}

type fakeNotifier struct {
	sent   []notifications.Message
	failOn map[string]error
}

func (f *fakeNotifier) Send(_ context.Context, _ string, msg notifications.Message) error {
	if err := f.failOn[msg.Type]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeNotifier) types() []string {
	out := make([]string, 0, len(f.sent))
	for _, msg := range f.sent {
		out = append(out, msg.Type)
	}
	return out
}

func (f *fakeNotifier) ofType(ntype string) []notifications.Message {
	var out []notifications.Message
	for _, msg := range f.sent {
		if msg.Type == ntype {
			out = append(out, msg)
		}
	}
	return out
}

type fakeRegistrar struct {
	registrations []auth.Registration
	errs          []error
}

func (f *fakeRegistrar) Register(_ context.Context, _ string, reg auth.Registration) (string, error) {
	f.registrations = append(f.registrations, reg)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "emp-new", nil
}

type fakeDirectory map[string][]auth.Identity

func (f fakeDirectory) FindUsersByRole(_ context.Context, _, role string) ([]auth.Identity, error) {
	return f[role], nil
}

type fakePayroll struct {
	policies    []payroll.SigningBonusPolicyInput
	policyErr   error
	policyNil   bool
	bonuses     []payroll.EmployeeSigningBonusInput
	approvals   []string
	approveErr  error
	runs        []payroll.PayrollRun
	lookups     [][2]time.Time
	lookupErr   error
	initiations []payroll.InitiationRequest
	initiateErr error
}

func (f *fakePayroll) CreateSigningBonusPolicy(_ context.Context, _ string, in payroll.SigningBonusPolicyInput) (*payroll.SigningBonusPolicy, error) {
	f.policies = append(f.policies, in)
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	if f.policyNil {
		return nil, nil
	}
	return &payroll.SigningBonusPolicy{ID: "policy-1", PositionName: in.PositionName, Amount: in.Amount, Status: in.Status}, nil
}

func (f *fakePayroll) CreateEmployeeSigningBonus(_ context.Context, _ string, in payroll.EmployeeSigningBonusInput) (*payroll.EmployeeSigningBonus, error) {
	f.bonuses = append(f.bonuses, in)
	return &payroll.EmployeeSigningBonus{ID: "bonus-1", EmployeeID: in.EmployeeID, SigningBonusID: in.SigningBonusID, Status: in.Status}, nil
}

func (f *fakePayroll) ApproveSigningBonus(_ context.Context, _, id string) (*payroll.EmployeeSigningBonus, error) {
	f.approvals = append(f.approvals, id)
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	return &payroll.EmployeeSigningBonus{ID: id, Status: payroll.BonusStatusApproved}, nil
}

func (f *fakePayroll) FindDraftPayrollRunInPeriod(_ context.Context, _ string, start, end time.Time) (*payroll.PayrollRun, error) {
	f.lookups = append(f.lookups, [2]time.Time{start, end})
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, run := range f.runs {
		if run.Status == payroll.RunStatusDraft && !run.PayrollPeriod.Before(start) && !run.PayrollPeriod.After(end) {
			run := run
			return &run, nil
		}
	}
	return nil, nil
}

func (f *fakePayroll) StartPayrollInitiation(_ context.Context, _ string, req payroll.InitiationRequest) (payroll.InitiationResult, error) {
	f.initiations = append(f.initiations, req)
	if f.initiateErr != nil {
		return payroll.InitiationResult{}, f.initiateErr
	}
	return payroll.InitiationResult{Message: "ok"}, nil
}

type trackedRun struct {
	jobType string
	details any
	err     error
}

type fakeRuns struct {
	runs []trackedRun
}

func (f *fakeRuns) Track(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error) {
	details, err := run(ctx)
	f.runs = append(f.runs, trackedRun{jobType: jobType, details: details, err: err})
	return details, err
}

var errBoom = errors.New("boom")

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type harness struct {
	svc       *Service
	contracts *fakeContracts
	notifier  *fakeNotifier
	registrar *fakeRegistrar
	directory fakeDirectory
	payroll   *fakePayroll
	metrics   *metrics.Collector
}

func newHarness(contract recruitment.Contract) *harness {
	h := &harness{
		contracts: &fakeContracts{
			contracts: map[string]recruitment.Contract{contract.ID: contract},
			offers: map[string]recruitment.Offer{
				"offer-1": {ID: "offer-1", ApplicationID: "app-1", CandidateID: "cand-1", HREmployeeID: "hr-1", Role: contract.Role},
			},
			applications: map[string]recruitment.Application{
				"app-1": {ID: "app-1", CandidateID: "cand-1", Position: contract.Role, Status: recruitment.ApplicationStatusOffered},
			},
		},
		notifier:  &fakeNotifier{failOn: map[string]error{}},
		registrar: &fakeRegistrar{},
		directory: fakeDirectory{
			auth.RolePayrollManager: {{ID: "pm-1"}},
			auth.RoleSystemAdmin:    {{ID: "admin-1"}},
		},
		payroll: &fakePayroll{},
		metrics: metrics.New(),
	}
	h.svc = New(Deps{
		Contracts:     h.contracts,
		Notifier:      h.notifier,
		Registrar:     h.registrar,
		Holders:       HolderResolver{Directory: h.directory},
		PayrollConfig: h.payroll,
		Payroll:       h.payroll,
		Metrics:       h.metrics,
	}, Settings{WorkEmailDomain: "company.com", InitialPassword: "Welcome@2024"})
	h.svc.now = func() time.Time { return fixedNow }
	h.svc.suffix = func() int { return 4821 }
	return h
}

func (h *harness) update(u recruitment.ContractUpdate) (*recruitment.Contract, error) {
	return h.svc.UpdateContract(context.Background(), "tenant-1", "contract-1", u)
}

func ptr[T any](v T) *T { return &v }

func unsigned() recruitment.Contract {
	return recruitment.Contract{ID: "contract-1", OfferID: "offer-1", Role: "Engineer"}
}

func employeeSigned() recruitment.Contract {
	c := unsigned()
	signed := fixedNow.Add(-48 * time.Hour)
	c.EmployeeSignedAt = &signed
	c.EmployeeSignatureURL = "sig.png"
	return c
}

func fullyExecuted() recruitment.Contract {
	c := employeeSigned()
	signed := fixedNow.Add(-24 * time.Hour)
	c.EmployerSignedAt = &signed
	return c
}
