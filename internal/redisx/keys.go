package redisx

import "time"

const (
	// Session cart per buyer: hash cart:{buyer_id}, field product_id -> CartItem json
	KeyCart = "cart:%s"

	// Idempotency checkout: idem:checkout:{buyer_id}:{reference} -> CheckoutResult json
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// Cache status order: order_status:{order_id} -> {"status": "...", "payment_status": "..."}
	KeyOrderStatus = "order_status:%s"
)

var (
	TTLCart        = 7 * 24 * time.Hour
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
)
