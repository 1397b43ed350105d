package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/domain/payroll"
	"hireflow/internal/domain/recruitment"
	"hireflow/internal/platform/metrics"
)

// registerAttempts bounds retries when a generated employee number is taken.
const registerAttempts = 3

// JobProvisioning is the job_runs type recorded for each new-hire provisioning.
const JobProvisioning = "onboarding_provisioning"

type Settings struct {
	WorkEmailDomain string
	InitialPassword string
}

type Deps struct {
	Contracts     ContractStore
	Notifier      Notifier
	Registrar     Registrar
	Holders       HolderResolver
	PayrollConfig PayrollConfiguration
	Payroll       PayrollExecution
	Metrics       StepRecorder
	Runs          RunTracker
}

// Service runs the contract-completion workflow on contract updates.
type Service struct {
	Deps
	settings Settings

	now    func() time.Time
	suffix func() int
}

func New(deps Deps, settings Settings) *Service {
	return &Service{
		Deps:     deps,
		settings: settings,
		now:      time.Now,
		suffix:   func() int { return 1000 + rand.IntN(9000) },
	}
}

// UpdateContract applies the partial update, persists it, and then runs the
// signature notifications and, on the fully-executed edge, new-hire
// provisioning. The persisted update is never rolled back. Updates that
// would clear or replace a recorded signature are refused before anything
// is written.
func (s *Service) UpdateContract(ctx context.Context, tenantID, contractID string, update recruitment.ContractUpdate) (*recruitment.Contract, error) {
	before, err := s.Contracts.FindContract(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	if err := update.CheckSignatures(*before); err != nil {
		return nil, err
	}
	offer, err := s.Contracts.FindOffer(ctx, tenantID, before.OfferID)
	if err != nil {
		return nil, err
	}

	after, err := s.Contracts.UpdateContract(ctx, tenantID, update.Apply(*before, s.now()))
	if err != nil {
		return nil, err
	}

	if err := s.notifySignatures(ctx, tenantID, *before, *after, *offer); err != nil {
		return nil, err
	}
	if before.FullyExecuted() || !after.FullyExecuted() {
		return after, nil
	}
	if err := s.trackProvisioning(ctx, tenantID, *after, *offer); err != nil {
		return nil, err
	}
	return after, nil
}

func (s *Service) trackProvisioning(ctx context.Context, tenantID string, contract recruitment.Contract, offer recruitment.Offer) error {
	if s.Runs == nil {
		return s.provision(ctx, tenantID, contract, offer)
	}
	_, err := s.Runs.Track(ctx, JobProvisioning, tenantID, func(ctx context.Context) (any, error) {
		details := map[string]any{
			"contractId":  contract.ID,
			"offerId":     offer.ID,
			"candidateId": offer.CandidateID,
			"role":        contract.Role,
		}
		return details, s.provision(ctx, tenantID, contract, offer)
	})
	return err
}

func (s *Service) notifySignatures(ctx context.Context, tenantID string, before, after recruitment.Contract, offer recruitment.Offer) error {
	var sent bool
	return s.runStep(ctx, after.ID, step{name: StepSignatureNotices, policy: PolicyFatal, unguarded: true}, func() error {
		if before.EmployeeSignedAt == nil && after.EmployeeSignedAt != nil {
			sent = true
			if err := s.Notifier.Send(ctx, tenantID, notifications.Message{
				To:      offer.HREmployeeID,
				Type:    notifications.TypeContractEmployeeSigned,
				Message: fmt.Sprintf("The candidate has signed the %s contract %s.", after.Role, after.ID),
			}); err != nil {
				return err
			}
		}
		if before.EmployerSignedAt == nil && after.EmployerSignedAt != nil {
			sent = true
			if err := s.Notifier.Send(ctx, tenantID, notifications.Message{
				To:      offer.CandidateID,
				Type:    notifications.TypeContractFullyExecuted,
				Message: fmt.Sprintf("Your %s contract is now fully executed. Welcome aboard!", after.Role),
			}); err != nil {
				return err
			}
		}
		if !sent {
			return errSkipped
		}
		return nil
	})
}

// provision runs once, on the update that makes the contract fully executed.
func (s *Service) provision(ctx context.Context, tenantID string, contract recruitment.Contract, offer recruitment.Offer) error {
	if err := s.runStep(ctx, contract.ID, step{name: StepApplicationHired, policy: PolicyFatal, unguarded: true}, func() error {
		return s.markHired(ctx, tenantID, contract, offer)
	}); err != nil {
		return err
	}

	var payrollManager, systemAdmin auth.Identity
	if err := s.runStep(ctx, contract.ID, step{name: StepResolveHolders, policy: PolicyFatal, unguarded: true}, func() error {
		var err error
		if payrollManager, err = s.Holders.ResolveSingleHolder(ctx, tenantID, auth.RolePayrollManager); err != nil {
			return err
		}
		systemAdmin, err = s.Holders.ResolveSingleHolder(ctx, tenantID, auth.RoleSystemAdmin)
		return err
	}); err != nil {
		return err
	}

	if err := s.runStep(ctx, contract.ID, step{name: StepProvisioningNotice, policy: PolicyFatal, unguarded: true}, func() error {
		return s.sendProvisioningNotices(ctx, tenantID, contract, payrollManager.ID, systemAdmin.ID)
	}); err != nil {
		return err
	}

	if err := s.runStep(ctx, contract.ID, step{name: StepIdentity, policy: PolicyFatal}, func() error {
		return s.createIdentity(ctx, tenantID, contract, offer)
	}); err != nil {
		return err
	}

	return s.runStep(ctx, contract.ID, step{name: StepPayrollInitiation, policy: PolicySilent}, func() error {
		return s.initiatePayroll(ctx, tenantID, contract, payrollManager.ID)
	})
}

func (s *Service) markHired(ctx context.Context, tenantID string, contract recruitment.Contract, offer recruitment.Offer) error {
	application, err := s.Contracts.FindApplication(ctx, tenantID, offer.ApplicationID)
	if errors.Is(err, ErrNotFound) {
		slog.WarnContext(ctx, "onboarding application missing", "contractId", contract.ID, "applicationId", offer.ApplicationID)
		return errSkipped
	}
	if err != nil {
		return err
	}
	return s.Contracts.UpdateApplicationStatus(ctx, tenantID, application.ID, recruitment.ApplicationStatusHired)
}

func (s *Service) sendProvisioningNotices(ctx context.Context, tenantID string, contract recruitment.Contract, payrollManagerID, systemAdminID string) error {
	notices := []notifications.Message{
		{
			To:      payrollManagerID,
			Type:    notifications.TypePayrollProvisioning,
			Message: fmt.Sprintf("Payroll provisioning is required for the new %s hire (contract %s).", contract.Role, contract.ID),
		},
		{
			To:      systemAdminID,
			Type:    notifications.TypeSystemAccess,
			Message: fmt.Sprintf("System access provisioning is required for the new %s hire (contract %s).", contract.Role, contract.ID),
		},
		{
			To:      systemAdminID,
			Type:    notifications.TypeEmailAccess,
			Message: fmt.Sprintf("Email access provisioning is required for the new %s hire (contract %s).", contract.Role, contract.ID),
		},
		{
			To:      systemAdminID,
			Type:    notifications.TypeEquipmentSetup,
			Message: fmt.Sprintf("Prepare desk, laptop and access card for the new %s hire (contract %s).", contract.Role, contract.ID),
		},
	}
	for _, notice := range notices {
		if err := s.Notifier.Send(ctx, tenantID, notice); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) createIdentity(ctx context.Context, tenantID string, contract recruitment.Contract, offer recruitment.Offer) error {
	var employeeID, employeeNumber, workEmail string
	var err error
	for attempt := 0; attempt < registerAttempts; attempt++ {
		employeeNumber = fmt.Sprintf("EMP-%04d", s.suffix())
		workEmail = strings.ToLower(employeeNumber) + "@" + s.settings.WorkEmailDomain
		employeeID, err = s.Registrar.Register(ctx, tenantID, auth.Registration{
			EmployeeNumber: employeeNumber,
			WorkEmail:      workEmail,
			Password:       s.settings.InitialPassword,
			FirstName:      "--",
			LastName:       "--",
			NationalID:     "NAT-" + employeeNumber,
			DateOfHire:     s.now(),
		})
		if !errors.Is(err, auth.ErrIdentityExists) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("onboarding: register %s: %w", employeeNumber, err)
	}

	if err := s.Notifier.Send(ctx, tenantID, notifications.Message{
		To:   offer.CandidateID,
		Type: notifications.TypeEmployeeCredentials,
		Message: fmt.Sprintf("Your employee account is ready. Email: %s, Password: %s, Employee number: %s. "+
			"Please reset your password and update your national ID after first login.",
			workEmail, s.settings.InitialPassword, employeeNumber),
	}); err != nil {
		return err
	}

	if contract.BonusAmount() <= 0 {
		s.record(StepSigningBonus, metrics.OutcomeSkipped)
		return nil
	}
	return s.runStep(ctx, contract.ID, step{
		name:   StepSigningBonus,
		policy: PolicyRecoverable,
		recover: func(bonusErr error) error {
			return s.Notifier.Send(ctx, tenantID, notifications.Message{
				To:   offer.HREmployeeID,
				Type: notifications.TypeSigningBonusFailed,
				Message: fmt.Sprintf("Signing bonus for employee %s (role %s, amount %s) could not be processed: %v. Please handle it manually.",
					employeeID, contract.Role, strconv.FormatFloat(contract.BonusAmount(), 'f', -1, 64), bonusErr),
			})
		},
	}, func() error {
		return s.provisionSigningBonus(ctx, tenantID, contract, employeeID)
	})
}

func (s *Service) provisionSigningBonus(ctx context.Context, tenantID string, contract recruitment.Contract, employeeID string) error {
	policy, err := s.PayrollConfig.CreateSigningBonusPolicy(ctx, tenantID, payroll.SigningBonusPolicyInput{
		PositionName: contract.Role,
		Amount:       contract.BonusAmount(),
		Status:       payroll.PolicyStatusApproved,
	})
	if err != nil {
		return err
	}
	if policy == nil {
		return ErrPolicyNotCreated
	}

	bonus, err := s.Payroll.CreateEmployeeSigningBonus(ctx, tenantID, payroll.EmployeeSigningBonusInput{
		EmployeeID:     employeeID,
		SigningBonusID: policy.ID,
		Status:         payroll.BonusStatusPending,
	})
	if err != nil {
		return err
	}
	_, err = s.Payroll.ApproveSigningBonus(ctx, tenantID, bonus.ID)
	return err
}

func (s *Service) initiatePayroll(ctx context.Context, tenantID string, contract recruitment.Contract, payrollManagerID string) error {
	signed := s.now()
	if contract.EmployerSignedAt != nil {
		signed = *contract.EmployerSignedAt
	}
	start, end := DayRange(PayrollPeriodMarker(signed))

	run, err := s.Payroll.FindDraftPayrollRunInPeriod(ctx, tenantID, start, end)
	if err != nil {
		return err
	}
	if run == nil {
		slog.WarnContext(ctx, "no draft payroll run for period", "contractId", contract.ID, "periodStart", start, "periodEnd", end)
		return errSkipped
	}

	result, err := s.Payroll.StartPayrollInitiation(ctx, tenantID, payroll.InitiationRequest{
		PayrollRunID:        run.ID,
		PayrollSpecialistID: payrollManagerID,
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "payroll initiation started", "contractId", contract.ID, "payrollRunId", run.ID, "message", result.Message)
	return nil
}
