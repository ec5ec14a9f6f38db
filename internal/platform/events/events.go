package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// PlanillaEvent is published on every planilla lifecycle transition.
type PlanillaEvent struct {
	PlanillaID string    `json:"planillaId"`
	CompanyID  string    `json:"companyId"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actorId"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	PublishPlanilla(ctx context.Context, evt PlanillaEvent) error
	Close() error
}

type noopPublisher struct{}

func (noopPublisher) PublishPlanilla(context.Context, PlanillaEvent) error { return nil }
func (noopPublisher) Close() error                                       { return nil }

// Noop returns a publisher that drops every event.
func Noop() Publisher {
	return noopPublisher{}
}

type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// Connect dials NATS and returns a publisher rooted at prefix. An empty url
// yields the no-op publisher.
func Connect(url, prefix string) (Publisher, error) {
	if strings.TrimSpace(url) == "" {
		return Noop(), nil
	}
	conn, err := nats.Connect(url,
		nats.Name("backoffice-planillas"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (p *NATSPublisher) PublishPlanilla(ctx context.Context, evt PlanillaEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.conn.Publish(PlanillaSubject(p.prefix, evt.Status), payload)
}

func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

// PlanillaSubject builds "<prefix>.planilla.<status>".
func PlanillaSubject(prefix, status string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return "planilla." + status
	}
	return prefix + ".planilla." + status
}
