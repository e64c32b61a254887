package orders

const (
	TopicOrderCreated      = "order.created"
	TopicOrderStatus       = "order.status.changed"
	TopicOrderPaid         = "order.payment.paid"
	TopicInventoryRestored = "inventory.restored"
)

// Partition key = order_id, so every event of one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
