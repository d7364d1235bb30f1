package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shoply/marketplace/internal/market"
)

type recordingMailer struct {
	to       []string
	subjects []string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.to = append(m.to, to)
	m.subjects = append(m.subjects, subject)
	return nil
}

func message(t *testing.T, eventType string, payload any) kafkago.Message {
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	env := market.Envelope{
		EventID:      "evt-1",
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      raw,
	}
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Value: b}
}

func TestHandleOrderPlaced(t *testing.T) {
	mailer := &recordingMailer{}
	svc := &Service{Mailer: mailer, Log: zap.NewNop(), ServiceName: "test"}

	msg := message(t, market.EventOrderPlaced, market.OrderPlacedPayload{
		OrderID:       10,
		ProductName:   "Keyboard",
		CustomerName:  "Dana",
		CustomerEmail: "dana@example.com",
		Quantity:      2,
		TotalPrice:    "100.00",
	})
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), msg))
	require.Len(t, mailer.to, 1)
	assert.Equal(t, "dana@example.com", mailer.to[0])
	assert.Equal(t, "Order confirmation", mailer.subjects[0])
}

func TestHandleOrderPlacedSkipsWithoutEmail(t *testing.T) {
	mailer := &recordingMailer{}
	svc := &Service{Mailer: mailer, Log: zap.NewNop(), ServiceName: "test"}

	msg := message(t, market.EventOrderPlaced, market.OrderPlacedPayload{OrderID: 10})
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), msg))
	assert.Empty(t, mailer.to)
}

func TestHandleOrderPlacedIgnoresOtherEvents(t *testing.T) {
	mailer := &recordingMailer{}
	svc := &Service{Mailer: mailer, Log: zap.NewNop(), ServiceName: "test"}

	msg := message(t, market.EventOrderReady, market.OrderReadyPayload{OrderID: 10})
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), msg))
	assert.Empty(t, mailer.to)
}

func TestHandleOrderFulfilled(t *testing.T) {
	mailer := &recordingMailer{}
	svc := &Service{Mailer: mailer, Log: zap.NewNop(), ServiceName: "test"}

	msg := message(t, market.EventOrderFulfilled, market.OrderFulfilledPayload{
		OrderID:        10,
		CustomerEmail:  "dana@example.com",
		TrackingNumber: "TRK-1",
	})
	require.NoError(t, svc.HandleOrderFulfilled(context.Background(), msg))
	require.Len(t, mailer.to, 1)
	assert.Equal(t, "Your order has shipped", mailer.subjects[0])
}

func TestHandleRejectsMalformedEnvelope(t *testing.T) {
	svc := &Service{Mailer: &recordingMailer{}, Log: zap.NewNop(), ServiceName: "test"}
	err := svc.HandleOrderPlaced(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
