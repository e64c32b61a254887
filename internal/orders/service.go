package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rohitpatil/agrimart/internal/inventory"
	kafkax "github.com/rohitpatil/agrimart/internal/kafka"
	"github.com/rohitpatil/agrimart/internal/metrics"
)

var ErrNotOwner = errors.New("orders: actor does not own this order")

// Actor is whoever is driving a transition.
type Actor struct {
	UserID string
	Role   string // buyer | vendor
}

type repository interface {
	Get(ctx context.Context, id string) (Order, error)
	UpdateStatusCAS(ctx context.Context, id string, from, to Status) (bool, error)
	MarkPaid(ctx context.Context, id string) error
}

type restorer interface {
	Restore(ctx context.Context, lines []inventory.Line) inventory.RestoreResult
}

type publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// Service enforces transition authority on top of the status table.
type Service struct {
	Repo        repository
	Restorer    restorer
	Producer    publisher
	ServiceName string
	Log         *zap.Logger
}

// Advance moves an order one step along the happy path. Vendor only;
// cancellation goes through Cancel.
func (s *Service) Advance(ctx context.Context, orderID string, to Status, vendorID string) (Order, error) {
	o, err := s.Repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.VendorID != vendorID {
		return Order{}, ErrNotOwner
	}
	if to == StatusCancelled || !CanTransition(o.Status, to) {
		return Order{}, ErrInvalidTransition
	}

	ok, err := s.Repo.UpdateStatusCAS(ctx, orderID, o.Status, to)
	if err != nil {
		return Order{}, err
	}
	if !ok {
		return Order{}, ErrInvalidTransition
	}

	from := o.Status
	o.Status = to
	o.UpdatedAt = time.Now().UTC()

	// Cash on delivery settles when the vendor hands the goods over.
	if to == StatusDelivered && o.PaymentMethod == MethodCOD {
		if err := s.Repo.MarkPaid(ctx, orderID); err != nil {
			s.Log.Warn("mark cod paid", zap.String("order_id", orderID), zap.Error(err))
		} else {
			o.PaymentStatus = PaymentPaid
		}
	}

	s.publishStatus(o.ID, from, to, "vendor")
	return o, nil
}

// Cancel flips the order to cancelled, then restores its stock. The
// status write is durable first: a failed restoration is reported and
// logged, never rolled back into an un-cancellation.
func (s *Service) Cancel(ctx context.Context, orderID string, actor Actor) (Order, inventory.RestoreResult, error) {
	o, err := s.Repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, inventory.RestoreResult{}, err
	}
	switch actor.Role {
	case "buyer":
		if o.BuyerID != actor.UserID {
			return Order{}, inventory.RestoreResult{}, ErrNotOwner
		}
	case "vendor":
		if o.VendorID != actor.UserID {
			return Order{}, inventory.RestoreResult{}, ErrNotOwner
		}
	default:
		return Order{}, inventory.RestoreResult{}, ErrNotOwner
	}
	if !CanCancel(o.Status) {
		return Order{}, inventory.RestoreResult{}, ErrInvalidTransition
	}

	ok, err := s.Repo.UpdateStatusCAS(ctx, orderID, o.Status, StatusCancelled)
	if err != nil {
		return Order{}, inventory.RestoreResult{}, err
	}
	if !ok {
		return Order{}, inventory.RestoreResult{}, ErrInvalidTransition
	}

	from := o.Status
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now().UTC()

	res := s.Restorer.Restore(ctx, []inventory.Line{{ProductID: o.ProductID, Quantity: o.Quantity}})
	for _, f := range res.Failures {
		metrics.RestoreFailuresTotal.Inc()
		s.Log.Error("inventory restore failed",
			zap.String("order_id", orderID),
			zap.String("product_id", f.ProductID),
			zap.Int("quantity", f.Quantity),
			zap.Error(f.Err),
		)
	}

	s.publishStatus(o.ID, from, StatusCancelled, actor.Role)
	s.publishRestored(o.ID, res)
	return o, res, nil
}

func (s *Service) publishStatus(orderID string, from, to Status, actor string) {
	if s.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(StatusChangedPayload{OrderID: orderID, From: from, To: to, Actor: actor}),
	}
	s.Producer.Publish(TopicOrderStatus, PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) publishRestored(orderID string, res inventory.RestoreResult) {
	if s.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventInventoryRestored,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(InventoryRestoredPayload{
			OrderID: orderID, Restored: res.Restored, Failures: res.Failures,
		}),
	}
	s.Producer.Publish(TopicInventoryRestored, PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventInventoryRestored)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
