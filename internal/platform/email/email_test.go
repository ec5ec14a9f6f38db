package email

import (
	"context"
	"strings"
	"testing"

	"backoffice/internal/platform/config"
)

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	mailer := New(config.Defaults())
	if _, ok := mailer.(noopMailer); !ok {
		t.Fatalf("expected noop mailer, got %T", mailer)
	}
	if err := mailer.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"); err != nil {
		t.Fatalf("noop send: %v", err)
	}
}

func TestBuildMessageEncodesSubject(t *testing.T) {
	msg := string(buildMessage("rrhh@example.com", "agente@example.com", "Boleta de pago publicada: período 2024-05", "Hola"))
	if !strings.Contains(msg, "To: agente@example.com\r\n") {
		t.Fatalf("missing recipient header: %q", msg)
	}
	if strings.Contains(msg, "período") {
		t.Fatal("expected non-ascii subject to be encoded")
	}
	if !strings.HasSuffix(msg, "\r\n\r\nHola") {
		t.Fatalf("expected body after blank line: %q", msg)
	}
}
