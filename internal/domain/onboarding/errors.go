package onboarding

import (
	"errors"
	"fmt"

	"hireflow/internal/domain/core"
	"hireflow/internal/domain/recruitment"
)

// ErrNotFound matches every not-found error the workflow can return.
var ErrNotFound = core.ErrNotFound

var (
	ErrContractNotFound       = recruitment.ErrContractNotFound
	ErrOfferNotFound          = recruitment.ErrOfferNotFound
	ErrNoRoleHolder           = fmt.Errorf("role holder %w", core.ErrNotFound)
	ErrPayrollManagerNotFound = fmt.Errorf("payroll manager: %w", ErrNoRoleHolder)
	ErrSystemAdminNotFound    = fmt.Errorf("system admin: %w", ErrNoRoleHolder)
	ErrPolicyNotCreated       = errors.New("signing bonus policy was not created")
)
