package proyectos

const (
	StatusActivo     = "activo"
	StatusSuspendido = "suspendido"
	StatusFinalizado = "finalizado"
)

var Statuses = []string{StatusActivo, StatusSuspendido, StatusFinalizado}

func validStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
