package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedProduct(id int64, name string, qty int) Product {
	return Product{
		ID:       id,
		SellerID: 1,
		Name:     name,
		Price:    decimal.NewFromInt(100),
		Quantity: qty,
		Status:   ProductApproved,
	}
}

func TestValidateItems(t *testing.T) {
	products := map[int64]Product{
		1: approvedProduct(1, "Keyboard", 5),
		2: {ID: 2, Name: "Mouse", Quantity: 5, Status: ProductPending},
	}

	err := ValidateItems([]CartItem{{ProductID: 1, Quantity: 2}}, products)
	assert.NoError(t, err)

	err = ValidateItems([]CartItem{{ProductID: 1, Quantity: 0}}, products)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	err = ValidateItems([]CartItem{{ProductID: 99, Quantity: 1}}, products)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "99")

	err = ValidateItems([]CartItem{{ProductID: 2, Quantity: 1}}, products)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available for purchase")

	err = ValidateItems([]CartItem{{ProductID: 1, Quantity: 6}}, products)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough quantity")
}

func TestCartProductIDs(t *testing.T) {
	c := Cart{Items: []CartItem{
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 2},
		{ProductID: 3, Quantity: 4},
	}}
	assert.Equal(t, []int64{3, 1}, c.ProductIDs())

	assert.Empty(t, Cart{}.ProductIDs())
}
