package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/shoply/marketplace/internal/kafka"
	"github.com/shoply/marketplace/internal/market"
	"github.com/shoply/marketplace/internal/redisx"
)

// Service turns order lifecycle events into customer mail. Consumed events are
// deduplicated by event id so redelivery never double-sends.
type Service struct {
	Redis       *redis.Client
	Mailer      Mailer
	Log         *zap.Logger
	ServiceName string
}

func (s *Service) seen(ctx context.Context, eventID string) bool {
	if s.Redis == nil {
		return false
	}
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, eventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if !exists {
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}
	return exists
}

func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != market.EventOrderPlaced {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}
	p, err := kafkax.UnwrapPayload[market.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.CustomerEmail == "" {
		s.Log.Warn("order placed event without customer email", zap.Int64("order_id", p.OrderID))
		return nil
	}
	body := fmt.Sprintf("Hi %s, your order #%d for %d x %s (total %s) has been placed.",
		p.CustomerName, p.OrderID, p.Quantity, p.ProductName, p.TotalPrice)
	return s.Mailer.Send(ctx, p.CustomerEmail, "Order confirmation", body)
}

func (s *Service) HandleOrderFulfilled(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != market.EventOrderFulfilled {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}
	p, err := kafkax.UnwrapPayload[market.OrderFulfilledPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.CustomerEmail == "" {
		s.Log.Warn("order fulfilled event without customer email", zap.Int64("order_id", p.OrderID))
		return nil
	}
	body := fmt.Sprintf("Your order #%d has shipped. Tracking number: %s.", p.OrderID, p.TrackingNumber)
	return s.Mailer.Send(ctx, p.CustomerEmail, "Your order has shipped", body)
}
