package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanillaSubject(t *testing.T) {
	assert.Equal(t, "backoffice.planilla.pagada", PlanillaSubject("backoffice", "pagada"))
	assert.Equal(t, "backoffice.planilla.aprobada", PlanillaSubject(" backoffice. ", "aprobada"))
	assert.Equal(t, "planilla.cancelada", PlanillaSubject("", "cancelada"))
}

func TestConnectWithoutURLIsNoop(t *testing.T) {
	pub, err := Connect("", "backoffice")
	require.NoError(t, err)
	require.NoError(t, pub.PublishPlanilla(context.Background(), PlanillaEvent{Status: "pagada"}))
	require.NoError(t, pub.Close())
}

func TestNATSPublishIntegration(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL not set")
	}
	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()
	msgs := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe("test.planilla.*", msgs)
	require.NoError(t, err)
	defer func() { _ = s.Unsubscribe() }()
	require.NoError(t, sub.Flush())

	pub, err := Connect(url, "test")
	require.NoError(t, err)
	defer pub.Close()

	evt := PlanillaEvent{PlanillaID: "p1", CompanyID: "c1", Status: "aprobada", ActorID: "u1", At: time.Now().UTC()}
	require.NoError(t, pub.PublishPlanilla(context.Background(), evt))

	select {
	case msg := <-msgs:
		assert.Equal(t, "test.planilla.aprobada", msg.Subject)
		var got PlanillaEvent
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "p1", got.PlanillaID)
	case <-time.After(3 * time.Second):
		t.Fatal("event not received")
	}
}
