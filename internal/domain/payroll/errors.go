package payroll

import (
	"errors"
	"fmt"

	"hireflow/internal/domain/core"
)

var (
	ErrPolicyNotFound       = fmt.Errorf("signing bonus policy %w", core.ErrNotFound)
	ErrSigningBonusNotFound = fmt.Errorf("employee signing bonus %w", core.ErrNotFound)
	ErrPayrollRunNotFound   = fmt.Errorf("payroll run %w", core.ErrNotFound)
	ErrInvalidState         = errors.New("payroll record is not in the required state")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidInput         = errors.New("invalid payroll input")
)
