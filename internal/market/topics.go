package market

import "strconv"

const (
	TopicOrderPlaced    = "market.order.placed"
	TopicOrderReady     = "market.order.ready"
	TopicOrderFulfilled = "market.order.fulfilled"
)

// Partition key = order id so every event of one order keeps its order.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}
