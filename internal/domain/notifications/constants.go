package notifications

const (
	TypeContractEmployeeSigned = "contract_employee_signed"
	TypeContractFullyExecuted  = "contract_fully_executed"
	TypePayrollProvisioning    = "onboarding_payroll_provisioning"
	TypeSystemAccess           = "onboarding_system_access"
	TypeEmailAccess            = "onboarding_email_access"
	TypeEquipmentSetup         = "onboarding_equipment_setup"
	TypeEmployeeCredentials    = "onboarding_employee_credentials"
	TypeSigningBonusFailed     = "onboarding_signing_bonus_failed"
)

var titles = map[string]string{
	TypeContractEmployeeSigned: "Contract signed by candidate",
	TypeContractFullyExecuted:  "Welcome aboard",
	TypePayrollProvisioning:    "Payroll provisioning required",
	TypeSystemAccess:           "System access required",
	TypeEmailAccess:            "Email access required",
	TypeEquipmentSetup:         "Equipment setup required",
	TypeEmployeeCredentials:    "Your employee account",
	TypeSigningBonusFailed:     "Signing bonus processing failed",
}

// Title returns the subject line used for a notification type.
func Title(ntype string) string {
	if title, ok := titles[ntype]; ok {
		return title
	}
	return "Notification"
}
