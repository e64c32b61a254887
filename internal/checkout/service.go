package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rohitpatil/agrimart/internal/cart"
	"github.com/rohitpatil/agrimart/internal/inventory"
	kafkax "github.com/rohitpatil/agrimart/internal/kafka"
	"github.com/rohitpatil/agrimart/internal/metrics"
	"github.com/rohitpatil/agrimart/internal/orders"
	"github.com/rohitpatil/agrimart/internal/payment"
	"github.com/rohitpatil/agrimart/internal/redisx"
)

var ErrInvalidMethod = errors.New("checkout: unknown payment method")

type Input struct {
	Reference    string // client idempotency key
	BuyerID      string
	BuyerContact string
	Shipping     orders.Shipping
	Method       orders.PaymentMethod
}

type Result struct {
	OrderIDs       []string `json:"order_ids"`
	TotalCents     int64    `json:"total_cents"`
	GatewayOrderID string   `json:"gateway_order_id,omitempty"`
	Idempotent     bool     `json:"idempotent,omitempty"`
}

type cartStore interface {
	Get(ctx context.Context, buyerID string) (cart.Cart, error)
	Clear(ctx context.Context, buyerID string) error
}

type ledger interface {
	Checkout(ctx context.Context, lines []inventory.Line, persist func(pgx.Tx) error) error
}

type orderInserter interface {
	InsertTx(ctx context.Context, tx pgx.Tx, recs []orders.Order) error
}

type publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// Service converts a session cart into persisted order rows. Sequence:
// gateway order first (online only, so a creation failure aborts with
// nothing written), then stock check + decrement + fan-out rows in one
// transaction, then events and cart cleanup.
type Service struct {
	Carts       cartStore
	Ledger      ledger
	Orders      orderInserter
	Gateway     payment.Gateway
	Producer    publisher
	Redis       *redis.Client // optional idempotency fast-path; DB stays the truth
	ServiceName string
	Log         *zap.Logger
}

func (s *Service) Checkout(ctx context.Context, in Input) (Result, error) {
	start := time.Now()

	// Replay before touching the cart: a successful checkout clears it,
	// so a retried reference must answer from the remembered result.
	if prev, ok := s.replay(ctx, in); ok {
		return prev, nil
	}

	c, err := s.Carts.Get(ctx, in.BuyerID)
	if err != nil {
		return Result{}, err
	}
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	if in.Method != orders.MethodCOD && in.Method != orders.MethodRazorpay {
		return Result{}, ErrInvalidMethod
	}

	total := c.TotalCents()

	var gatewayOrderID string
	if in.Method == orders.MethodRazorpay {
		receipt := in.Reference
		if receipt == "" {
			receipt = uuid.NewString()
		}
		gw, err := s.Gateway.CreateOrder(ctx, total, "INR", receipt)
		if err != nil {
			metrics.CheckoutsTotal.WithLabelValues("payment_creation_failed").Inc()
			var ce *payment.CreationError
			if errors.As(err, &ce) {
				return Result{}, err
			}
			return Result{}, &payment.CreationError{Err: err}
		}
		gatewayOrderID = gw.ID
	}

	recs := BuildOrders(c, in, gatewayOrderID, time.Now().UTC())
	lines := make([]inventory.Line, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	err = s.Ledger.Checkout(ctx, lines, func(tx pgx.Tx) error {
		return s.Orders.InsertTx(ctx, tx, recs)
	})
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues(checkoutOutcome(err)).Inc()
		return Result{}, err
	}

	res := Result{TotalCents: total, GatewayOrderID: gatewayOrderID}
	for _, o := range recs {
		res.OrderIDs = append(res.OrderIDs, o.ID)
	}

	if err := s.Carts.Clear(ctx, in.BuyerID); err != nil {
		s.Log.Warn("clear cart after checkout", zap.String("buyer_id", in.BuyerID), zap.Error(err))
	}
	s.remember(ctx, in, res)
	s.publishCreated(recs)

	metrics.CheckoutsTotal.WithLabelValues("success").Inc()
	metrics.CheckoutDuration.Observe(time.Since(start).Seconds())
	return res, nil
}

// BuildOrders fans a cart out into one pending order row per line.
func BuildOrders(c cart.Cart, in Input, gatewayOrderID string, now time.Time) []orders.Order {
	out := make([]orders.Order, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, orders.Order{
			ID:             uuid.NewString(),
			BuyerID:        in.BuyerID,
			BuyerContact:   in.BuyerContact,
			ProductID:      it.ProductID,
			ProductTitle:   it.Title,
			Quantity:       it.Quantity,
			PriceCents:     it.PriceCents,
			TotalCents:     it.PriceCents * int64(it.Quantity),
			VendorID:       it.VendorID,
			VendorName:     it.VendorName,
			Shipping:       in.Shipping,
			PaymentMethod:  in.Method,
			PaymentStatus:  orders.PaymentPending,
			GatewayOrderID: gatewayOrderID,
			Status:         orders.StatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return out
}

func (s *Service) replay(ctx context.Context, in Input) (Result, bool) {
	if s.Redis == nil || in.Reference == "" {
		return Result{}, false
	}
	key := fmt.Sprintf(redisx.KeyIdemCheckout, in.BuyerID, in.Reference)
	raw, err := s.Redis.Get(ctx, key).Result()
	if err != nil || raw == "" {
		return Result{}, false
	}
	var prev Result
	if err := json.Unmarshal([]byte(raw), &prev); err != nil {
		return Result{}, false
	}
	prev.Idempotent = true
	return prev, true
}

func (s *Service) remember(ctx context.Context, in Input, res Result) {
	if s.Redis == nil || in.Reference == "" {
		return
	}
	key := fmt.Sprintf(redisx.KeyIdemCheckout, in.BuyerID, in.Reference)
	_ = s.Redis.Set(ctx, key, kafkax.MustMarshal(res), redisx.TTLIdempotency).Err()
}

func (s *Service) publishCreated(recs []orders.Order) {
	if s.Producer == nil {
		return
	}
	for _, o := range recs {
		ev := orders.Envelope{
			EventID:       uuid.NewString(),
			EventType:     orders.EventOrderCreated,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      s.ServiceName,
			CorrelationID: o.ID,
			Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
				OrderID:       o.ID,
				BuyerID:       o.BuyerID,
				ProductID:     o.ProductID,
				Quantity:      o.Quantity,
				TotalCents:    o.TotalCents,
				VendorID:      o.VendorID,
				PaymentMethod: o.PaymentMethod,
			}),
		}
		s.Producer.Publish(orders.TopicOrderCreated, orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}
}

func checkoutOutcome(err error) string {
	var stock *inventory.InsufficientStockError
	var missing *inventory.ProductNotFoundError
	switch {
	case errors.As(err, &stock):
		return "insufficient_stock"
	case errors.As(err, &missing):
		return "product_not_found"
	default:
		return "error"
	}
}
