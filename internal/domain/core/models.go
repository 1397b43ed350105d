package core

import "time"

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusTerminated = "terminated"
)

type Employee struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	EmployeeNumber string     `json:"employeeNumber"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	NationalID     string     `json:"nationalId,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewHire is the employee record written alongside a freshly registered user.
type NewHire struct {
	UserID         string
	EmployeeNumber string
	FirstName      string
	LastName       string
	Email          string
	NationalID     string
	StartDate      time.Time
}
