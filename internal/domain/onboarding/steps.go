package onboarding

import (
	"context"
	"errors"
	"log/slog"

	"hireflow/internal/platform/metrics"
)

// StepPolicy decides what a failing workflow step does to the rest of the run.
type StepPolicy int

const (
	// PolicyFatal returns the error and aborts the workflow.
	PolicyFatal StepPolicy = iota
	// PolicyRecoverable hands the error to the step's recovery and continues.
	PolicyRecoverable
	// PolicySilent logs the error and continues.
	PolicySilent
)

const (
	StepSignatureNotices   = "signature_notifications"
	StepApplicationHired   = "application_hired"
	StepResolveHolders     = "resolve_holders"
	StepProvisioningNotice = "provisioning_notifications"
	StepIdentity           = "identity_creation"
	StepSigningBonus       = "signing_bonus"
	StepPayrollInitiation  = "payroll_initiation"
)

var errSkipped = errors.New("step skipped")

// step describes one workflow step. Unguarded fatal steps propagate their
// error without the failure log line.
type step struct {
	name      string
	policy    StepPolicy
	unguarded bool
	recover   func(err error) error
}

// runStep executes fn under the step's policy. Returning errSkipped from fn
// records the step as skipped.
func (s *Service) runStep(ctx context.Context, contractID string, st step, fn func() error) error {
	err := fn()
	switch {
	case err == nil:
		s.record(st.name, metrics.OutcomeOK)
		return nil
	case errors.Is(err, errSkipped):
		s.record(st.name, metrics.OutcomeSkipped)
		return nil
	}

	switch st.policy {
	case PolicyRecoverable:
		slog.WarnContext(ctx, "onboarding step recovered", "contractId", contractID, "step", st.name, "err", err)
		if st.recover != nil {
			if rerr := st.recover(err); rerr != nil {
				s.record(st.name, metrics.OutcomeFailed)
				return rerr
			}
		}
		s.record(st.name, metrics.OutcomeRecovered)
		return nil
	case PolicySilent:
		slog.WarnContext(ctx, "onboarding step failed", "contractId", contractID, "step", st.name, "err", err)
		s.record(st.name, metrics.OutcomeFailed)
		return nil
	default:
		if !st.unguarded {
			slog.ErrorContext(ctx, "onboarding step failed", "contractId", contractID, "step", st.name, "err", err)
		}
		s.record(st.name, metrics.OutcomeFailed)
		return err
	}
}

func (s *Service) record(stepName, outcome string) {
	if s.Metrics != nil {
		s.Metrics.RecordStep(stepName, outcome)
	}
}
