package market

type ProductStatus string

const (
	ProductPending  ProductStatus = "pending"
	ProductApproved ProductStatus = "approved"
	ProductRejected ProductStatus = "rejected"
)

// Approval decisions only apply to products still under review.
var validProductNext = map[ProductStatus]map[ProductStatus]bool{
	ProductPending:  {ProductApproved: true, ProductRejected: true},
	ProductApproved: {},
	ProductRejected: {},
}

func (s ProductStatus) CanTransition(to ProductStatus) bool {
	return validProductNext[s][to]
}

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductPending, ProductApproved, ProductRejected:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderReady     OrderStatus = "ready"
	OrderFulfilled OrderStatus = "fulfilled"
)

// Strictly forward: placed -> ready -> fulfilled.
var validOrderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPlaced:    {OrderReady: true},
	OrderReady:     {OrderFulfilled: true},
	OrderFulfilled: {},
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return validOrderNext[s][to]
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPlaced, OrderReady, OrderFulfilled:
		return true
	}
	return false
}
