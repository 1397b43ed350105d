package recruitment

import (
	"fmt"
	"strings"
	"time"
)

type Application struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	Position    string    `json:"position"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Offer struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	CandidateID   string    `json:"candidateId"`
	HREmployeeID  string    `json:"hrEmployeeId"`
	Role          string    `json:"role"`
	SigningBonus  *float64  `json:"signingBonus,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Contract struct {
	ID                   string     `json:"id"`
	OfferID              string     `json:"offerId"`
	Role                 string     `json:"role"`
	SigningBonus         *float64   `json:"signingBonus,omitempty"`
	EmployeeSignedAt     *time.Time `json:"employeeSignedAt,omitempty"`
	EmployeeSignatureURL string     `json:"employeeSignatureUrl,omitempty"`
	EmployerSignedAt     *time.Time `json:"employerSignedAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// FullyExecuted reports whether both parties have signed: the employee
// signature artifact and the employer signature time are present.
func (c Contract) FullyExecuted() bool {
	return strings.TrimSpace(c.EmployeeSignatureURL) != "" && c.EmployerSignedAt != nil
}

// BonusAmount returns the signing bonus, zero when unset.
func (c Contract) BonusAmount() float64 {
	if c.SigningBonus == nil {
		return 0
	}
	return *c.SigningBonus
}

// ContractUpdate is a partial update; nil fields are left untouched.
type ContractUpdate struct {
	Role                 *string    `json:"role,omitempty"`
	SigningBonus         *float64   `json:"signingBonus,omitempty"`
	EmployeeSignedAt     *time.Time `json:"employeeSignedAt,omitempty"`
	EmployeeSignatureURL *string    `json:"employeeSignatureUrl,omitempty"`
	EmployerSignedAt     *time.Time `json:"employerSignedAt,omitempty"`
}

func (u ContractUpdate) Empty() bool {
	return u.Role == nil && u.SigningBonus == nil && u.EmployeeSignedAt == nil &&
		u.EmployeeSignatureURL == nil && u.EmployerSignedAt == nil
}

// Apply merges the update into a copy of c. Recording a signature artifact
// on a contract with no employee signature time stamps it with now.
func (u ContractUpdate) Apply(c Contract, now time.Time) Contract {
	out := c
	if u.Role != nil {
		out.Role = *u.Role
	}
	if u.SigningBonus != nil {
		amount := *u.SigningBonus
		out.SigningBonus = &amount
	}
	if u.EmployeeSignatureURL != nil {
		out.EmployeeSignatureURL = *u.EmployeeSignatureURL
	}
	if u.EmployeeSignedAt != nil {
		at := *u.EmployeeSignedAt
		out.EmployeeSignedAt = &at
	} else if out.EmployeeSignedAt == nil && u.EmployeeSignatureURL != nil && strings.TrimSpace(*u.EmployeeSignatureURL) != "" {
		at := now
		out.EmployeeSignedAt = &at
	}
	if u.EmployerSignedAt != nil {
		at := *u.EmployerSignedAt
		out.EmployerSignedAt = &at
	}
	return out
}

// CheckSignatures rejects an update that would clear or replace a signature
// already recorded on c. Resending the recorded value is allowed.
func (u ContractUpdate) CheckSignatures(c Contract) error {
	if u.EmployeeSignatureURL != nil && strings.TrimSpace(c.EmployeeSignatureURL) != "" &&
		strings.TrimSpace(*u.EmployeeSignatureURL) != strings.TrimSpace(c.EmployeeSignatureURL) {
		return fmt.Errorf("employee signature: %w", ErrSignatureRecorded)
	}
	if u.EmployeeSignedAt != nil && c.EmployeeSignedAt != nil && !u.EmployeeSignedAt.Equal(*c.EmployeeSignedAt) {
		return fmt.Errorf("employee signature time: %w", ErrSignatureRecorded)
	}
	if u.EmployerSignedAt != nil && c.EmployerSignedAt != nil && !u.EmployerSignedAt.Equal(*c.EmployerSignedAt) {
		return fmt.Errorf("employer signature: %w", ErrSignatureRecorded)
	}
	return nil
}

// EmployeeFieldsOnly reports whether the update only touches fields a
// candidate may set on their own contract.
func (u ContractUpdate) EmployeeFieldsOnly() bool {
	return u.Role == nil && u.SigningBonus == nil && u.EmployerSignedAt == nil
}

type ApplicationInput struct {
	CandidateID string `json:"candidateId"`
	Position    string `json:"position"`
}

type OfferInput struct {
	ApplicationID string   `json:"applicationId"`
	HREmployeeID  string   `json:"hrEmployeeId"`
	Role          string   `json:"role"`
	SigningBonus  *float64 `json:"signingBonus"`
}
