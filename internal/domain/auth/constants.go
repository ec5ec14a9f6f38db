package auth

const (
	RoleAdmin      = "admin"
	RoleRRHH       = "rrhh"
	RoleSupervisor = "supervisor"
	RoleContador   = "contador"
	RoleAgente     = "agente"

	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"

	mfaIssuer = "Backoffice Planillas"
)

// CanManagePayslips reports whether a role may read any employee's payslip.
func CanManagePayslips(role string) bool {
	return role == RoleAdmin || role == RoleRRHH || role == RoleContador
}
