package market

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderReady     = "OrderReady"
	EventOrderFulfilled = "OrderFulfilled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID       int64  `json:"order_id"`
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	SellerID      int64  `json:"seller_id"`
	UserID        int64  `json:"user_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Quantity      int    `json:"quantity"`
	TotalPrice    string `json:"total_price"`
	Address       string `json:"address"`
}

type OrderReadyPayload struct {
	OrderID  int64 `json:"order_id"`
	SellerID int64 `json:"seller_id"`
	UserID   int64 `json:"user_id"`
}

type OrderFulfilledPayload struct {
	OrderID        int64  `json:"order_id"`
	UserID         int64  `json:"user_id"`
	CustomerEmail  string `json:"customer_email,omitempty"`
	TrackingNumber string `json:"tracking_number"`
}
