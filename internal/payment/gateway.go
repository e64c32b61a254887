package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrVerificationFailed: the order rows exist but stay unpaid; the
	// buyer may retry or contact support.
	ErrVerificationFailed = errors.New("payment: signature verification failed")

	// ErrPaymentCancelled: the buyer dismissed the widget. Recoverable;
	// the same gateway order id can be paid again without touching stock.
	ErrPaymentCancelled = errors.New("payment: cancelled by buyer")
)

// CreationError aborts a checkout before any order row is written.
type CreationError struct{ Err error }

func (e *CreationError) Error() string { return fmt.Sprintf("payment: create gateway order: %v", e.Err) }
func (e *CreationError) Unwrap() error { return e.Err }

// GatewayOrder is the provider-side intent to pay, referenced by id and
// owned by the gateway, not by us.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (GatewayOrder, error)
}

// Signature returns hex HMAC-SHA256(secret, orderID + "|" + paymentID),
// the value the gateway hands to the client widget on success.
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature is the only trust boundary of the payment flow: a
// client-reported success means nothing until this recomputation
// matches byte for byte.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	expected := Signature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
