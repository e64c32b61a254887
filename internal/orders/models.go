package orders

import "time"

type PaymentMethod string

const (
	MethodCOD      PaymentMethod = "cod"
	MethodRazorpay PaymentMethod = "razorpay"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Shipping struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pin_code"`
	Phone   string `json:"phone"`
}

// Order is one cart line of a checkout. A multi-vendor cart fans out
// into several rows; GatewayOrderID correlates the rows of one online
// payment, there is no parent record.
type Order struct {
	ID             string        `json:"id"`
	BuyerID        string        `json:"buyer_id"`
	BuyerContact   string        `json:"buyer_contact"`
	ProductID      string        `json:"product_id"`
	ProductTitle   string        `json:"product_title"`
	Quantity       int           `json:"quantity"`
	PriceCents     int64         `json:"price_cents"`
	TotalCents     int64         `json:"total_cents"`
	VendorID       string        `json:"vendor_id"`
	VendorName     string        `json:"vendor_name"`
	Shipping       Shipping      `json:"shipping"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	GatewayOrderID string        `json:"gateway_order_id,omitempty"`
	Status         Status        `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	PaidAt         *time.Time    `json:"paid_at,omitempty"`
}
