package auth

const (
	PermPersonalRead     = "personal.read"
	PermPersonalWrite    = "personal.write"
	PermProyectosRead    = "proyectos.read"
	PermProyectosWrite   = "proyectos.write"
	PermAsistenciaRead   = "asistencia.read"
	PermAsistenciaWrite  = "asistencia.write"
	PermPlanillaRead     = "planilla.read"
	PermPlanillaGenerate = "planilla.generate"
	PermPlanillaApprove  = "planilla.approve"
	PermPlanillaPay      = "planilla.pay"
	PermPlanillaCancel   = "planilla.cancel"
	PermBoletasRead      = "boletas.read"
	PermAuditRead        = "audit.read"
)

var DefaultPermissions = []string{
	PermPersonalRead,
	PermPersonalWrite,
	PermProyectosRead,
	PermProyectosWrite,
	PermAsistenciaRead,
	PermAsistenciaWrite,
	PermPlanillaRead,
	PermPlanillaGenerate,
	PermPlanillaApprove,
	PermPlanillaPay,
	PermPlanillaCancel,
	PermBoletasRead,
	PermAuditRead,
}

// RolePermissions is the permission set seeded for every company role.
var RolePermissions = map[string][]string{
	RoleAdmin: DefaultPermissions,
	RoleRRHH: {
		PermPersonalRead,
		PermPersonalWrite,
		PermProyectosRead,
		PermProyectosWrite,
		PermAsistenciaRead,
		PermAsistenciaWrite,
		PermPlanillaRead,
		PermPlanillaGenerate,
		PermPlanillaCancel,
		PermBoletasRead,
	},
	RoleSupervisor: {
		PermPersonalRead,
		PermProyectosRead,
		PermAsistenciaRead,
		PermAsistenciaWrite,
		PermBoletasRead,
	},
	RoleContador: {
		PermPersonalRead,
		PermProyectosRead,
		PermAsistenciaRead,
		PermPlanillaRead,
		PermPlanillaApprove,
		PermPlanillaPay,
		PermPlanillaCancel,
		PermBoletasRead,
		PermAuditRead,
	},
	RoleAgente: {
		PermBoletasRead,
	},
}
