package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderPlaced.CanTransition(OrderReady))
	assert.True(t, OrderReady.CanTransition(OrderFulfilled))

	// no skipping, no going back
	assert.False(t, OrderPlaced.CanTransition(OrderFulfilled))
	assert.False(t, OrderReady.CanTransition(OrderPlaced))
	assert.False(t, OrderFulfilled.CanTransition(OrderReady))
	assert.False(t, OrderFulfilled.CanTransition(OrderPlaced))
}

func TestProductStatusTransitions(t *testing.T) {
	assert.True(t, ProductPending.CanTransition(ProductApproved))
	assert.True(t, ProductPending.CanTransition(ProductRejected))

	// decisions are final
	assert.False(t, ProductApproved.CanTransition(ProductRejected))
	assert.False(t, ProductRejected.CanTransition(ProductApproved))
	assert.False(t, ProductApproved.CanTransition(ProductPending))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, OrderPlaced.Valid())
	assert.True(t, OrderFulfilled.Valid())
	assert.False(t, OrderStatus("shipped").Valid())

	assert.True(t, ProductPending.Valid())
	assert.False(t, ProductStatus("draft").Valid())
}
