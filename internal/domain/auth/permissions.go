package auth

const (
	PermEmployeesRead      = "core.employees.read"
	PermRecruitmentRead    = "recruitment.read"
	PermRecruitmentWrite   = "recruitment.write"
	PermContractsSign      = "recruitment.contracts.sign"
	PermPayrollRead        = "payroll.read"
	PermPayrollConfigure   = "payroll.configure"
	PermPayrollApprove     = "payroll.approve"
	PermPayrollRun         = "payroll.run"
	PermNotificationsAdmin = "notifications.admin"
	PermSystemAdmin        = "admin.system"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermRecruitmentRead,
	PermRecruitmentWrite,
	PermContractsSign,
	PermPayrollRead,
	PermPayrollConfigure,
	PermPayrollApprove,
	PermPayrollRun,
	PermNotificationsAdmin,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleCandidate: {
		PermRecruitmentRead,
		PermContractsSign,
	},
	RoleEmployee: {
		PermEmployeesRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermRecruitmentRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermRecruitmentRead,
		PermRecruitmentWrite,
		PermContractsSign,
		PermPayrollRead,
		PermNotificationsAdmin,
	},
	RolePayrollManager: {
		PermEmployeesRead,
		PermPayrollRead,
		PermPayrollConfigure,
		PermPayrollApprove,
		PermPayrollRun,
	},
	RoleSystemAdmin: {
		PermEmployeesRead,
		PermSystemAdmin,
	},
}
