package market

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsers struct {
	user User
	cart Cart
}

func (f *fakeUsers) GetUser(ctx context.Context, id int64) (User, error) {
	if id != f.user.ID {
		return User{}, ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUsers) GetCart(ctx context.Context, userID int64) (Cart, error) {
	return f.cart, nil
}

type fakeProducts struct {
	byID map[int64]Product
}

func (f *fakeProducts) GetProducts(ctx context.Context, ids []int64) (map[int64]Product, error) {
	out := make(map[int64]Product, len(ids))
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeOrders struct {
	orders map[int64]Order
	// stock is the authoritative inventory, decremented on placement the way
	// the transactional repo does. It may lag the catalog snapshot the drafts
	// were validated against.
	stock  map[int64]int
	users  *fakeUsers
	nextID int64
	placed int // PlaceOrders invocations
}

func (f *fakeOrders) GetOrder(ctx context.Context, id int64) (Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) PlaceOrders(ctx context.Context, userID int64, drafts []OrderDraft) ([]Order, error) {
	f.placed++
	// all-or-nothing: re-check every line before touching anything
	if f.stock != nil {
		for _, d := range drafts {
			if f.stock[d.ProductID] < d.Quantity {
				return nil, Invalidf("product %s inventory has changed, only %d units available",
					d.ProductName, f.stock[d.ProductID])
			}
		}
	}
	out := make([]Order, 0, len(drafts))
	for _, d := range drafts {
		if f.stock != nil {
			f.stock[d.ProductID] -= d.Quantity
		}
		f.nextID++
		o := Order{
			ID:           f.nextID,
			ProductID:    d.ProductID,
			SellerID:     d.SellerID,
			UserID:       userID,
			CustomerName: d.CustomerName,
			Address:      d.Address,
			Quantity:     d.Quantity,
			TotalPrice:   d.TotalPrice,
			Status:       OrderPlaced,
		}
		if f.orders == nil {
			f.orders = map[int64]Order{}
		}
		f.orders[o.ID] = o
		out = append(out, o)
	}
	if f.users != nil {
		f.users.cart = Cart{}
	}
	return out, nil
}

func (f *fakeOrders) SetOrderStatus(ctx context.Context, id int64, from, to OrderStatus) (Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	if o.Status != from {
		return Order{}, ErrConflict
	}
	o.Status = to
	f.orders[id] = o
	return o, nil
}

func (f *fakeOrders) SetOrderTracking(ctx context.Context, id int64, trackingNumber string) (Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	if o.Status != OrderReady {
		return Order{}, ErrConflict
	}
	o.Status = OrderFulfilled
	o.TrackingNumber = trackingNumber
	f.orders[id] = o
	return o, nil
}

type capturePublisher struct {
	envelopes []Envelope
}

func (c *capturePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err == nil {
		c.envelopes = append(c.envelopes, env)
	}
}

func newCheckout(users *fakeUsers, products *fakeProducts, orders *fakeOrders) (*Checkout, *capturePublisher, *capturePublisher, *capturePublisher) {
	orders.users = users
	placed := &capturePublisher{}
	ready := &capturePublisher{}
	fulfilled := &capturePublisher{}
	c := &Checkout{
		Users:             users,
		Products:          products,
		Orders:            orders,
		PlacedProducer:    placed,
		ReadyProducer:     ready,
		FulfilledProducer: fulfilled,
		Log:               zap.NewNop(),
		Service:           "marketplace-test",
	}
	return c, placed, ready, fulfilled
}

func TestBuildDraftsComputesTotals(t *testing.T) {
	price, _ := decimal.NewFromString("500.00")
	user := User{ID: 7, Name: "Dana", Email: "dana@example.com"}
	cart := Cart{Items: []CartItem{{ProductID: 1, Quantity: 2, Message: "gift wrap"}}}
	products := map[int64]Product{
		1: {ID: 1, SellerID: 3, Name: "Headphones", Price: price, Quantity: 10, Status: ProductApproved},
	}

	drafts, err := BuildDrafts(user, "221B Baker St", cart, products)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "1000.00", drafts[0].TotalPrice.StringFixed(2))
	assert.Equal(t, int64(3), drafts[0].SellerID)
	assert.Equal(t, "Dana", drafts[0].CustomerName)
	assert.Equal(t, "gift wrap", drafts[0].CustomerMessage)
}

func TestBuildDraftsRejectsEmptyCartAndMissingAddress(t *testing.T) {
	user := User{ID: 7, Name: "Dana"}
	products := map[int64]Product{1: approvedProduct(1, "Keyboard", 5)}

	_, err := BuildDrafts(user, "somewhere", Cart{}, products)
	assert.True(t, IsValidation(err))

	cart := Cart{Items: []CartItem{{ProductID: 1, Quantity: 1}}}
	_, err = BuildDrafts(user, "", cart, products)
	assert.True(t, IsValidation(err))
}

func TestPlaceOrderPublishesPerOrder(t *testing.T) {
	users := &fakeUsers{
		user: User{ID: 7, Name: "Dana", Email: "dana@example.com"},
		cart: Cart{Items: []CartItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		}},
	}
	products := &fakeProducts{byID: map[int64]Product{
		1: approvedProduct(1, "Keyboard", 5),
		2: approvedProduct(2, "Mouse", 5),
	}}
	orders := &fakeOrders{stock: map[int64]int{1: 5, 2: 5}}
	c, placed, _, _ := newCheckout(users, products, orders)

	out, err := c.PlaceOrder(context.Background(), 7, "221B Baker St")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, OrderPlaced, out[0].Status)

	// inventory dropped by exactly the ordered amounts, cart is gone
	assert.Equal(t, 3, orders.stock[1])
	assert.Equal(t, 4, orders.stock[2])
	assert.Empty(t, users.cart.Items)

	require.Len(t, placed.envelopes, 2)
	assert.Equal(t, EventOrderPlaced, placed.envelopes[0].EventType)
	var p OrderPlacedPayload
	require.NoError(t, json.Unmarshal(placed.envelopes[0].Payload, &p))
	assert.Equal(t, "dana@example.com", p.CustomerEmail)
	assert.Equal(t, "200.00", p.TotalPrice)
}

func TestPlaceOrderStaleStockRejected(t *testing.T) {
	users := &fakeUsers{
		user: User{ID: 7, Name: "Dana"},
		cart: Cart{Items: []CartItem{{ProductID: 1, Quantity: 2}}},
	}
	// the catalog snapshot still shows enough stock, the store does not
	products := &fakeProducts{byID: map[int64]Product{1: approvedProduct(1, "Keyboard", 5)}}
	orders := &fakeOrders{stock: map[int64]int{1: 1}}
	c, placed, _, _ := newCheckout(users, products, orders)

	_, err := c.PlaceOrder(context.Background(), 7, "221B Baker St")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "inventory has changed")

	assert.Empty(t, orders.orders)
	assert.Equal(t, 1, orders.stock[1])
	assert.Len(t, users.cart.Items, 1, "failed placement must leave the cart intact")
	assert.Empty(t, placed.envelopes)
}

func TestPlaceOrderOversellRejectedWithoutSideEffects(t *testing.T) {
	users := &fakeUsers{
		user: User{ID: 7, Name: "Dana"},
		cart: Cart{Items: []CartItem{{ProductID: 1, Quantity: 10}}},
	}
	products := &fakeProducts{byID: map[int64]Product{1: approvedProduct(1, "Keyboard", 5)}}
	orders := &fakeOrders{}
	c, placed, _, _ := newCheckout(users, products, orders)

	_, err := c.PlaceOrder(context.Background(), 7, "221B Baker St")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Zero(t, orders.placed)
	assert.Empty(t, placed.envelopes)
}

func TestMarkReady(t *testing.T) {
	orders := &fakeOrders{orders: map[int64]Order{
		10: {ID: 10, SellerID: 3, UserID: 7, Status: OrderPlaced},
	}}
	c, _, ready, _ := newCheckout(&fakeUsers{user: User{ID: 7}}, &fakeProducts{}, orders)

	// another seller cannot touch it
	_, err := c.MarkReady(context.Background(), 10, 99)
	assert.ErrorIs(t, err, ErrForbidden)

	o, err := c.MarkReady(context.Background(), 10, 3)
	require.NoError(t, err)
	assert.Equal(t, OrderReady, o.Status)
	require.Len(t, ready.envelopes, 1)
	assert.Equal(t, EventOrderReady, ready.envelopes[0].EventType)

	// second attempt conflicts
	_, err = c.MarkReady(context.Background(), 10, 3)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAddTracking(t *testing.T) {
	orders := &fakeOrders{orders: map[int64]Order{
		10: {ID: 10, SellerID: 3, UserID: 7, Status: OrderPlaced},
		11: {ID: 11, SellerID: 3, UserID: 7, Status: OrderReady},
	}}
	users := &fakeUsers{user: User{ID: 7, Email: "dana@example.com"}}
	c, _, _, fulfilled := newCheckout(users, &fakeProducts{}, orders)

	_, err := c.AddTracking(context.Background(), 11, "")
	assert.True(t, IsValidation(err))

	// placed orders cannot skip straight to fulfilled
	_, err = c.AddTracking(context.Background(), 10, "TRK-1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, OrderPlaced, orders.orders[10].Status)

	o, err := c.AddTracking(context.Background(), 11, "TRK-1")
	require.NoError(t, err)
	assert.Equal(t, OrderFulfilled, o.Status)
	assert.Equal(t, "TRK-1", o.TrackingNumber)

	require.Len(t, fulfilled.envelopes, 1)
	var p OrderFulfilledPayload
	require.NoError(t, json.Unmarshal(fulfilled.envelopes[0].Payload, &p))
	assert.Equal(t, "dana@example.com", p.CustomerEmail)
	assert.Equal(t, "TRK-1", p.TrackingNumber)
}
