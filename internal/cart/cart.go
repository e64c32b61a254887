package cart

import "errors"

var (
	ErrEmptyCart       = errors.New("cart: empty")
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
)

type Item struct {
	ProductID  string `json:"product_id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name"`
}

// Cart is a session-scoped value object passed into checkout; it only
// becomes durable state when the checkout transaction commits.
type Cart struct {
	BuyerID string `json:"buyer_id"`
	Items   []Item `json:"items"`
}

func (c Cart) Validate() error {
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range c.Items {
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

func (c Cart) TotalCents() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.PriceCents * int64(it.Quantity)
	}
	return total
}

// SubtotalsByVendor groups lines by vendor for display; persistence
// stays one order row per line.
func (c Cart) SubtotalsByVendor() map[string]int64 {
	out := make(map[string]int64)
	for _, it := range c.Items {
		out[it.VendorID] += it.PriceCents * int64(it.Quantity)
	}
	return out
}
