package payment

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohitpatil/agrimart/internal/redisx"
)

type fakeMarker struct {
	marked []string
	ids    []string
}

func (f *fakeMarker) MarkPaidByGatewayOrder(_ context.Context, gatewayOrderID string) ([]string, error) {
	f.marked = append(f.marked, gatewayOrderID)
	return f.ids, nil
}

func TestVerify_MatchMarksOrdersPaid(t *testing.T) {
	marker := &fakeMarker{ids: []string{"o1", "o2"}}
	svc := &Service{Secret: "S", Orders: marker, ServiceName: "test", Log: zap.NewNop()}

	sig := Signature("S", "order_1", "pay_1")
	ids, err := svc.Verify(context.Background(), "order_1", "pay_1", sig)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1", "o2"}, ids)
	assert.Equal(t, []string{"order_1"}, marker.marked)
}

func TestVerify_MismatchChangesNothing(t *testing.T) {
	marker := &fakeMarker{}
	svc := &Service{Secret: "S", Orders: marker, ServiceName: "test", Log: zap.NewNop()}

	_, err := svc.Verify(context.Background(), "order_1", "pay_1", "deadbeef")
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Empty(t, marker.marked, "a failed verification must not touch the orders")
}

func TestVerify_DropsStaleStatusCache(t *testing.T) {
	mr := miniredis.RunT(t)
	for _, id := range []string{"o1", "o2"} {
		mr.Set(fmt.Sprintf(redisx.KeyOrderStatus, id), `{"payment_status":"pending"}`)
	}

	marker := &fakeMarker{ids: []string{"o1", "o2"}}
	svc := &Service{
		Secret:      "S",
		Orders:      marker,
		Redis:       redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		ServiceName: "test",
		Log:         zap.NewNop(),
	}

	sig := Signature("S", "order_1", "pay_1")
	_, err := svc.Verify(context.Background(), "order_1", "pay_1", sig)
	require.NoError(t, err)

	assert.False(t, mr.Exists(fmt.Sprintf(redisx.KeyOrderStatus, "o1")))
	assert.False(t, mr.Exists(fmt.Sprintf(redisx.KeyOrderStatus, "o2")))
}

func TestCancelled_IsRecoverable(t *testing.T) {
	svc := &Service{Secret: "S", Orders: &fakeMarker{}, ServiceName: "test", Log: zap.NewNop()}
	err := svc.Cancelled(context.Background(), "order_1")
	assert.ErrorIs(t, err, ErrPaymentCancelled)
}
