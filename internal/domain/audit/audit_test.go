package audit

import (
	"strings"
	"testing"
	"time"
)

func TestBuildBaseQueryNumbersPlaceholders(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	query, args := buildBaseQuery("SELECT COUNT(1)", "c1", Filter{
		Action:     "planilla.aprobar",
		EntityType: "planilla",
		From:       from,
		To:         to,
	})

	for _, fragment := range []string{"company_id = $1", "action = $2", "entity_type = $3", "created_at >= $4", "created_at < $5"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected %q in %q", fragment, query)
		}
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
	if end, ok := args[4].(time.Time); !ok || !end.Equal(to.AddDate(0, 0, 1)) {
		t.Fatalf("expected exclusive upper bound, got %v", args[4])
	}
}

func TestMarshalOptional(t *testing.T) {
	out, err := marshalOptional(nil)
	if err != nil || out != nil {
		t.Fatalf("expected nil payload, got %s %v", out, err)
	}
	out, err = marshalOptional(map[string]string{"status": "aprobada"})
	if err != nil || string(out) != `{"status":"aprobada"}` {
		t.Fatalf("unexpected payload %s %v", out, err)
	}
}
