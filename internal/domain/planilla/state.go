package planilla

var transitions = map[string][]string{
	StatusBorrador: {StatusAprobada, StatusCancelada},
	StatusAprobada: {StatusPagada, StatusCancelada},
}

// CanTransition reports whether a planilla in from may move to to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves status.
func Terminal(status string) bool {
	return len(transitions[status]) == 0
}
