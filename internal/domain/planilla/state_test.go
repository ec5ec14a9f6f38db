package planilla

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusBorrador, StatusAprobada, true},
		{StatusBorrador, StatusCancelada, true},
		{StatusBorrador, StatusPagada, false},
		{StatusAprobada, StatusPagada, true},
		{StatusAprobada, StatusCancelada, true},
		{StatusAprobada, StatusBorrador, false},
		{StatusPagada, StatusCancelada, false},
		{StatusPagada, StatusBorrador, false},
		{StatusCancelada, StatusBorrador, false},
		{StatusCancelada, StatusAprobada, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(StatusPagada) || !Terminal(StatusCancelada) {
		t.Fatal("expected pagada and cancelada to be terminal")
	}
	if Terminal(StatusBorrador) || Terminal(StatusAprobada) {
		t.Fatal("expected borrador and aprobada to allow transitions")
	}
}
