package recruitment

import (
	"errors"
	"fmt"

	"hireflow/internal/domain/core"
)

var (
	ErrContractNotFound    = fmt.Errorf("contract %w", core.ErrNotFound)
	ErrOfferNotFound       = fmt.Errorf("offer %w", core.ErrNotFound)
	ErrApplicationNotFound = fmt.Errorf("application %w", core.ErrNotFound)
	ErrOfferNotPending     = errors.New("offer is not pending")
	ErrContractExists      = errors.New("contract already exists for offer")
	ErrInvalidStatus       = errors.New("invalid application status")
	ErrInvalidAmount       = errors.New("signing bonus must not be negative")
	ErrSignatureRecorded   = errors.New("contract signature already recorded")
)
