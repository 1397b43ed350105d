package auth

const (
	RoleHR             = "HR"
	RoleManager        = "Manager"
	RoleEmployee       = "Employee"
	RoleSystemAdmin    = "System Admin"
	RolePayrollManager = "Payroll Manager"
	RoleCandidate      = "Candidate"
)

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	UserID    string
	TenantID  string
	RoleID    string
	RoleName  string
	SessionID string
}
