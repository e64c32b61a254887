package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("catalog: product not found")
	ErrNotOwner = errors.New("catalog: product belongs to another vendor")
)

type Product struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int       `json:"quantity"`
	VendorID   string    `json:"vendor_id"`
	VendorName string    `json:"vendor_name"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
