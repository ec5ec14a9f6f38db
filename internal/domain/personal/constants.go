package personal

const (
	StatusActivo     = "activo"
	StatusCesado     = "cesado"
	StatusSuspendido = "suspendido"

	PositionAgente     = "agente"
	PositionSupervisor = "supervisor"
	PositionOperador   = "operador"
)

var (
	Statuses  = []string{StatusActivo, StatusCesado, StatusSuspendido}
	Positions = []string{PositionAgente, PositionSupervisor, PositionOperador}
)

func validStatus(status string) bool {
	return contains(Statuses, status)
}

func validPosition(position string) bool {
	return contains(Positions, position)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
