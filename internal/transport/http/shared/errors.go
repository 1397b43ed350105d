package shared

import (
	"errors"
	"log"
	"net/http"

	"hireflow/internal/domain/core"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/domain/payroll"
	"hireflow/internal/domain/recruitment"
	"hireflow/internal/transport/http/api"
)

// FailDomain maps a domain error onto the failure envelope. Errors it does
// not recognise become a 500 with the given code.
func FailDomain(w http.ResponseWriter, requestID string, err error, code, message string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, recruitment.ErrOfferNotPending),
		errors.Is(err, recruitment.ErrSignatureRecorded),
		errors.Is(err, payroll.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), requestID)
	case errors.Is(err, recruitment.ErrContractExists):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), requestID)
	case errors.Is(err, recruitment.ErrInvalidStatus),
		errors.Is(err, recruitment.ErrInvalidAmount),
		errors.Is(err, payroll.ErrInvalidAmount),
		errors.Is(err, payroll.ErrInvalidStatus),
		errors.Is(err, payroll.ErrInvalidInput),
		errors.Is(err, notifications.ErrInvalidMessage):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		log.Printf("%s: %v", code, err)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
