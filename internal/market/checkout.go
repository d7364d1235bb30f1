package market

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	kafkax "github.com/shoply/marketplace/internal/kafka"
	"github.com/shoply/marketplace/internal/redisx"
)

// OrderDraft is a fully validated order-to-be, one per cart line.
type OrderDraft struct {
	ProductID       int64
	SellerID        int64
	ProductName     string
	CustomerName    string
	Address         string
	Quantity        int
	TotalPrice      decimal.Decimal
	CustomerMessage string
}

type UserStore interface {
	GetUser(ctx context.Context, id int64) (User, error)
	GetCart(ctx context.Context, userID int64) (Cart, error)
}

type ProductSource interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]Product, error)
}

type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (Order, error)
	// PlaceOrders inserts one order per draft, decrements stock and clears the
	// customer's cart in a single transaction.
	PlaceOrders(ctx context.Context, userID int64, drafts []OrderDraft) ([]Order, error)
	SetOrderStatus(ctx context.Context, id int64, from, to OrderStatus) (Order, error)
	SetOrderTracking(ctx context.Context, id int64, trackingNumber string) (Order, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Checkout drives the order lifecycle: placed -> ready -> fulfilled.
type Checkout struct {
	Users    UserStore
	Products ProductSource
	Orders   OrderStore

	PlacedProducer    Publisher
	ReadyProducer     Publisher
	FulfilledProducer Publisher

	Redis   *redis.Client
	Log     *zap.Logger
	Service string
}

// BuildDrafts validates cart lines against current product state and computes
// totalPrice = price * quantity per line.
func BuildDrafts(user User, address string, cart Cart, products map[int64]Product) ([]OrderDraft, error) {
	if len(cart.Items) == 0 {
		return nil, Invalidf("cart is empty")
	}
	if address == "" {
		return nil, Invalidf("delivery address is required")
	}
	if err := ValidateItems(cart.Items, products); err != nil {
		return nil, err
	}
	drafts := make([]OrderDraft, 0, len(cart.Items))
	for _, it := range cart.Items {
		p := products[it.ProductID]
		drafts = append(drafts, OrderDraft{
			ProductID:       p.ID,
			SellerID:        p.SellerID,
			ProductName:     p.Name,
			CustomerName:    user.Name,
			Address:         address,
			Quantity:        it.Quantity,
			TotalPrice:      p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
			CustomerMessage: it.Message,
		})
	}
	return drafts, nil
}

// PlaceOrder converts the customer's cart into orders. Validation runs twice:
// here against a snapshot, and again under row locks inside PlaceOrders, so a
// concurrent checkout cannot oversell.
func (c *Checkout) PlaceOrder(ctx context.Context, userID int64, address string) ([]Order, error) {
	user, err := c.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart, err := c.Users.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, Invalidf("cart is empty")
	}
	products, err := c.Products.GetProducts(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	drafts, err := BuildDrafts(user, address, cart, products)
	if err != nil {
		return nil, err
	}

	placed, err := c.Orders.PlaceOrders(ctx, userID, drafts)
	if err != nil {
		return nil, err
	}

	for _, o := range placed {
		c.cacheStatus(ctx, o)
		c.publish(c.PlacedProducer, EventOrderPlaced, o.ID, OrderPlacedPayload{
			OrderID:       o.ID,
			ProductID:     o.ProductID,
			ProductName:   products[o.ProductID].Name,
			SellerID:      o.SellerID,
			UserID:        o.UserID,
			CustomerName:  o.CustomerName,
			CustomerEmail: user.Email,
			Quantity:      o.Quantity,
			TotalPrice:    o.TotalPrice.StringFixed(2),
			Address:       o.Address,
		})
	}
	return placed, nil
}

// MarkReady transitions placed -> ready. Only the owning seller may do it.
func (c *Checkout) MarkReady(ctx context.Context, orderID, sellerID int64) (Order, error) {
	o, err := c.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.SellerID != sellerID {
		return Order{}, fmt.Errorf("%w: order belongs to another seller", ErrForbidden)
	}
	if !o.Status.CanTransition(OrderReady) {
		return Order{}, fmt.Errorf("%w: order is not in the placed status", ErrConflict)
	}
	updated, err := c.Orders.SetOrderStatus(ctx, orderID, OrderPlaced, OrderReady)
	if err != nil {
		return Order{}, err
	}
	c.cacheStatus(ctx, updated)
	c.publish(c.ReadyProducer, EventOrderReady, updated.ID, OrderReadyPayload{
		OrderID:  updated.ID,
		SellerID: updated.SellerID,
		UserID:   updated.UserID,
	})
	return updated, nil
}

// AddTracking transitions ready -> fulfilled and records the tracking number
// in the same update.
func (c *Checkout) AddTracking(ctx context.Context, orderID int64, trackingNumber string) (Order, error) {
	if trackingNumber == "" {
		return Order{}, Invalidf("tracking number is required")
	}
	o, err := c.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !o.Status.CanTransition(OrderFulfilled) {
		return Order{}, fmt.Errorf("%w: order is not ready for fulfillment", ErrConflict)
	}
	updated, err := c.Orders.SetOrderTracking(ctx, orderID, trackingNumber)
	if err != nil {
		return Order{}, err
	}
	c.cacheStatus(ctx, updated)
	email := ""
	if u, err := c.Users.GetUser(ctx, updated.UserID); err == nil {
		email = u.Email
	}
	c.publish(c.FulfilledProducer, EventOrderFulfilled, updated.ID, OrderFulfilledPayload{
		OrderID:        updated.ID,
		UserID:         updated.UserID,
		CustomerEmail:  email,
		TrackingNumber: updated.TrackingNumber,
	})
	return updated, nil
}

func (c *Checkout) cacheStatus(ctx context.Context, o Order) {
	if c.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	body := fmt.Sprintf(`{"status":%q,"trackingNumber":%q}`, o.Status, o.TrackingNumber)
	if err := c.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil && c.Log != nil {
		c.Log.Warn("order status cache", zap.Int64("order_id", o.ID), zap.Error(err))
	}
}

func (c *Checkout) publish(p Publisher, eventType string, orderID int64, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      c.Service,
		CorrelationID: fmt.Sprintf("%d", orderID),
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
