package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/rohitpatil/agrimart/internal/kafka"
	"github.com/rohitpatil/agrimart/internal/metrics"
	"github.com/rohitpatil/agrimart/internal/orders"
	"github.com/rohitpatil/agrimart/internal/redisx"
)

type orderMarker interface {
	MarkPaidByGatewayOrder(ctx context.Context, gatewayOrderID string) ([]string, error)
}

type publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// Service owns the verify side of the two-phase payment flow; creation
// happens during checkout.
type Service struct {
	Secret      string
	Orders      orderMarker
	Producer    publisher
	Redis       *redis.Client // optional order-status cache to invalidate
	ServiceName string
	Log         *zap.Logger
}

// Verify recomputes the signature server-side and, on a match, marks
// every order row of the gateway order as paid. A mismatch changes
// nothing: inventory was committed at checkout and stays committed.
func (s *Service) Verify(ctx context.Context, gatewayOrderID, paymentID, signature string) ([]string, error) {
	if !VerifySignature(s.Secret, gatewayOrderID, paymentID, signature) {
		metrics.PaymentVerificationsTotal.WithLabelValues("failure").Inc()
		s.Log.Warn("payment verification failed",
			zap.String("gateway_order_id", gatewayOrderID),
			zap.String("gateway_payment_id", paymentID),
		)
		return nil, ErrVerificationFailed
	}

	ids, err := s.Orders.MarkPaidByGatewayOrder(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	metrics.PaymentVerificationsTotal.WithLabelValues("success").Inc()

	// Drop stale status-cache entries so reads see the paid rows.
	if s.Redis != nil {
		for _, id := range ids {
			_ = s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, id)).Err()
		}
	}

	if s.Producer != nil {
		ev := orders.Envelope{
			EventID:       uuid.NewString(),
			EventType:     orders.EventOrderPaid,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      s.ServiceName,
			CorrelationID: gatewayOrderID,
			Payload: kafkax.MustMarshal(orders.OrderPaidPayload{
				GatewayOrderID:   gatewayOrderID,
				GatewayPaymentID: paymentID,
				OrderIDs:         ids,
			}),
		}
		s.Producer.Publish(orders.TopicOrderPaid, []byte(gatewayOrderID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPaid)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}
	return ids, nil
}

// Cancelled records a mid-flow widget dismissal. Nothing changes on the
// orders: they keep their gateway order id and the buyer can retry the
// payment against it.
func (s *Service) Cancelled(ctx context.Context, gatewayOrderID string) error {
	s.Log.Info("payment cancelled by buyer", zap.String("gateway_order_id", gatewayOrderID))
	return ErrPaymentCancelled
}
