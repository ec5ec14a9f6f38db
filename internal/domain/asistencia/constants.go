package asistencia

const (
	StatePresente = "presente"
	StateTardanza = "tardanza"
	StateFalta    = "falta"
	StateDescanso = "descanso"
	StatePermiso  = "permiso"

	DeductionAdelanto = "adelanto"
	DeductionPrestamo = "prestamo"
	DeductionUniforme = "uniforme"
	DeductionJudicial = "judicial"
	DeductionOtro     = "otro"

	DeductionPendiente = "pendiente"
	DeductionAplicado  = "aplicado"
	DeductionAnulado   = "anulado"

	MaxBatchSize = 500
)

var (
	States            = []string{StatePresente, StateTardanza, StateFalta, StateDescanso, StatePermiso}
	DeductionTypes    = []string{DeductionAdelanto, DeductionPrestamo, DeductionUniforme, DeductionJudicial, DeductionOtro}
	DeductionStatuses = []string{DeductionPendiente, DeductionAplicado, DeductionAnulado}
)

func oneOf(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
