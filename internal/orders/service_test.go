package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohitpatil/agrimart/internal/inventory"
)

type fakeRepo struct {
	mu     sync.Mutex
	orders map[string]*Order
}

func newFakeRepo(os ...Order) *fakeRepo {
	r := &fakeRepo{orders: make(map[string]*Order)}
	for i := range os {
		o := os[i]
		r.orders[o.ID] = &o
	}
	return r
}

func (r *fakeRepo) Get(_ context.Context, id string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return *o, nil
}

func (r *fakeRepo) UpdateStatusCAS(_ context.Context, id string, from, to Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r *fakeRepo) MarkPaid(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = PaymentPaid
	return nil
}

type fakeRestorer struct {
	calls  [][]inventory.Line
	result inventory.RestoreResult
}

func (f *fakeRestorer) Restore(_ context.Context, lines []inventory.Line) inventory.RestoreResult {
	f.calls = append(f.calls, lines)
	if f.result.Restored == nil && f.result.Failures == nil {
		return inventory.RestoreResult{Restored: lines}
	}
	return f.result
}

func newService(repo *fakeRepo, rest *fakeRestorer) *Service {
	return &Service{Repo: repo, Restorer: rest, ServiceName: "test", Log: zap.NewNop()}
}

func pendingOrder(id string) Order {
	return Order{
		ID: id, BuyerID: "buyer-1", VendorID: "vendor-1",
		ProductID: "p1", Quantity: 3,
		PaymentMethod: MethodRazorpay, PaymentStatus: PaymentPending,
		Status: StatusPending,
	}
}

func TestAdvance_HappyPath(t *testing.T) {
	repo := newFakeRepo(pendingOrder("o1"))
	svc := newService(repo, &fakeRestorer{})

	for _, to := range []Status{StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered} {
		o, err := svc.Advance(context.Background(), "o1", to, "vendor-1")
		require.NoError(t, err, "advance to %s", to)
		assert.Equal(t, to, o.Status)
	}
}

func TestAdvance_RejectsSkip(t *testing.T) {
	repo := newFakeRepo(pendingOrder("o1"))
	svc := newService(repo, &fakeRestorer{})

	_, err := svc.Advance(context.Background(), "o1", StatusShipped, "vendor-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, _ := repo.Get(context.Background(), "o1")
	assert.Equal(t, StatusPending, stored.Status)
}

func TestAdvance_RejectsCancelledTarget(t *testing.T) {
	repo := newFakeRepo(pendingOrder("o1"))
	svc := newService(repo, &fakeRestorer{})

	_, err := svc.Advance(context.Background(), "o1", StatusCancelled, "vendor-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdvance_WrongVendor(t *testing.T) {
	repo := newFakeRepo(pendingOrder("o1"))
	svc := newService(repo, &fakeRestorer{})

	_, err := svc.Advance(context.Background(), "o1", StatusConfirmed, "vendor-2")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestAdvance_DeliveredSettlesCOD(t *testing.T) {
	o := pendingOrder("o1")
	o.PaymentMethod = MethodCOD
	o.Status = StatusShipped
	repo := newFakeRepo(o)
	svc := newService(repo, &fakeRestorer{})

	got, err := svc.Advance(context.Background(), "o1", StatusDelivered, "vendor-1")
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, got.PaymentStatus)

	stored, _ := repo.Get(context.Background(), "o1")
	assert.Equal(t, PaymentPaid, stored.PaymentStatus)
}

func TestAdvance_DeliveredLeavesOnlinePaymentAlone(t *testing.T) {
	o := pendingOrder("o1")
	o.Status = StatusShipped
	repo := newFakeRepo(o)
	svc := newService(repo, &fakeRestorer{})

	got, err := svc.Advance(context.Background(), "o1", StatusDelivered, "vendor-1")
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, got.PaymentStatus)
}

func TestCancel_BuyerRestoresInventory(t *testing.T) {
	repo := newFakeRepo(pendingOrder("o1"))
	rest := &fakeRestorer{}
	svc := newService(repo, rest)

	o, res, err := svc.Cancel(context.Background(), "o1", Actor{UserID: "buyer-1", Role: "buyer"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.True(t, res.AllRestored())

	require.Len(t, rest.calls, 1)
	assert.Equal(t, []inventory.Line{{ProductID: "p1", Quantity: 3}}, rest.calls[0])
}

func TestCancel_SurvivesRestoreFailure(t *testing.T) {
	repo := newFakeRepo(pendingOrder("o1"))
	rest := &fakeRestorer{result: inventory.RestoreResult{
		Failures: []inventory.RestoreFailure{{ProductID: "p1", Quantity: 3, Err: errors.New("db down"), Reason: "db down"}},
	}}
	svc := newService(repo, rest)

	o, res, err := svc.Cancel(context.Background(), "o1", Actor{UserID: "buyer-1", Role: "buyer"})
	require.NoError(t, err, "a restore failure must not fail the cancellation")
	assert.Equal(t, StatusCancelled, o.Status)
	assert.False(t, res.AllRestored())

	// The status write stays durable.
	stored, _ := repo.Get(context.Background(), "o1")
	assert.Equal(t, StatusCancelled, stored.Status)
}

func TestCancel_AuthorityChecks(t *testing.T) {
	repo := newFakeRepo(pendingOrder("o1"))
	svc := newService(repo, &fakeRestorer{})

	_, _, err := svc.Cancel(context.Background(), "o1", Actor{UserID: "buyer-2", Role: "buyer"})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, _, err = svc.Cancel(context.Background(), "o1", Actor{UserID: "vendor-2", Role: "vendor"})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, _, err = svc.Cancel(context.Background(), "o1", Actor{UserID: "x", Role: "landowner"})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCancel_RejectedFromShippedAndDelivered(t *testing.T) {
	for _, st := range []Status{StatusShipped, StatusDelivered} {
		o := pendingOrder("o1")
		o.Status = st
		repo := newFakeRepo(o)
		rest := &fakeRestorer{}
		svc := newService(repo, rest)

		_, _, err := svc.Cancel(context.Background(), "o1", Actor{UserID: "buyer-1", Role: "buyer"})
		assert.ErrorIs(t, err, ErrInvalidTransition, "cancel from %s", st)
		assert.Empty(t, rest.calls, "no restoration may run for %s", st)
	}
}

func TestCancel_VendorMayCancelOwnOrder(t *testing.T) {
	o := pendingOrder("o1")
	o.Status = StatusProcessing
	repo := newFakeRepo(o)
	svc := newService(repo, &fakeRestorer{})

	got, _, err := svc.Cancel(context.Background(), "o1", Actor{UserID: "vendor-1", Role: "vendor"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestCancel_StaleDoubleClickLosesCleanly(t *testing.T) {
	repo := newFakeRepo(pendingOrder("o1"))
	rest := &fakeRestorer{}
	svc := newService(repo, rest)

	_, _, err := svc.Cancel(context.Background(), "o1", Actor{UserID: "buyer-1", Role: "buyer"})
	require.NoError(t, err)

	_, _, err = svc.Cancel(context.Background(), "o1", Actor{UserID: "buyer-1", Role: "buyer"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, rest.calls, 1, "inventory must be restored exactly once")
}
