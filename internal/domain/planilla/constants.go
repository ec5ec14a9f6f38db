package planilla

const (
	StatusBorrador  = "borrador"
	StatusAprobada  = "aprobada"
	StatusPagada    = "pagada"
	StatusCancelada = "cancelada"

	WarningSinCuentaBancaria = "sin_cuenta_bancaria"
	WarningNetoNegativo      = "neto_negativo"
	WarningSinAsistencia     = "sin_asistencia"

	ActionCreate   = "planilla.create"
	ActionGenerate = "planilla.generate"
	ActionApprove  = "planilla.approve"
	ActionPay      = "planilla.pay"
	ActionCancel   = "planilla.cancel"

	EntityType = "planilla"

	// MaxPeriodDays bounds a pay period, both ends inclusive.
	MaxPeriodDays = 31
)

var Statuses = []string{StatusBorrador, StatusAprobada, StatusPagada, StatusCancelada}

func validStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
