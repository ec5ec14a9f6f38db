package notifications

import "errors"

const (
	TypeBoletaPublicada   = "boleta_publicada"
	TypePlanillaAprobada  = "planilla_aprobada"
	TypePlanillaCancelada = "planilla_cancelada"
)

var ErrNotFound = errors.New("notification not found")
