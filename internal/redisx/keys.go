package redisx

import "time"

const (
	// Cache of order status + tracking: order_status:{order_id}
	KeyOrderStatus = "order_status:%d"

	// Cache of an approved product detail: product:{product_id}
	KeyProduct = "product:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache  = 5 * time.Minute
	TTLProductCache = 1 * time.Minute
	TTLDedup        = 48 * time.Hour
)
