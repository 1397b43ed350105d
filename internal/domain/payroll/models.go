package payroll

import "time"

type SigningBonusPolicy struct {
	ID           string    `json:"id"`
	PositionName string    `json:"positionName"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type SigningBonusPolicyInput struct {
	PositionName string  `json:"positionName"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
}

type EmployeeSigningBonus struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	SigningBonusID string     `json:"signingBonusId"`
	Status         string     `json:"status"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type EmployeeSigningBonusInput struct {
	EmployeeID     string `json:"employeeId"`
	SigningBonusID string `json:"signingBonusId"`
	Status         string `json:"status"`
}

type PayrollRun struct {
	ID                  string     `json:"id"`
	PayrollPeriod       time.Time  `json:"payrollPeriod"`
	Status              string     `json:"status"`
	PayrollSpecialistID string     `json:"payrollSpecialistId,omitempty"`
	InitiatedAt         *time.Time `json:"initiatedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

type InitiationRequest struct {
	PayrollRunID        string `json:"payrollRunId"`
	PayrollSpecialistID string `json:"payrollSpecialistId"`
}

type InitiationResult struct {
	Message string      `json:"message"`
	Run     *PayrollRun `json:"run,omitempty"`
}
