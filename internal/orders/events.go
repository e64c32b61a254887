package orders

import (
	"encoding/json"
	"time"

	"github.com/rohitpatil/agrimart/internal/inventory"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderPaid          = "OrderPaid"
	EventInventoryRestored  = "InventoryRestored"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload per event ----

type OrderCreatedPayload struct {
	OrderID       string        `json:"order_id"`
	BuyerID       string        `json:"buyer_id"`
	ProductID     string        `json:"product_id"`
	Quantity      int           `json:"quantity"`
	TotalCents    int64         `json:"total_cents"`
	VendorID      string        `json:"vendor_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

type StatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
	Actor   string `json:"actor"` // buyer | vendor
}

type OrderPaidPayload struct {
	GatewayOrderID   string   `json:"gateway_order_id"`
	GatewayPaymentID string   `json:"gateway_payment_id"`
	OrderIDs         []string `json:"order_ids"`
}

type InventoryRestoredPayload struct {
	OrderID  string                     `json:"order_id"`
	Restored []inventory.Line           `json:"restored,omitempty"`
	Failures []inventory.RestoreFailure `json:"failures,omitempty"`
}
