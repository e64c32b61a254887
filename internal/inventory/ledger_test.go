package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreEach_AllSucceed(t *testing.T) {
	stock := map[string]int{"p1": 7, "p2": 2}
	res := restoreEach(context.Background(), []Line{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 1},
	}, func(_ context.Context, ln Line) error {
		stock[ln.ProductID] += ln.Quantity
		return nil
	})

	assert.True(t, res.AllRestored())
	assert.Len(t, res.Restored, 2)
	assert.Equal(t, 10, stock["p1"])
	assert.Equal(t, 3, stock["p2"])
}

func TestRestoreEach_FailureDoesNotBlockOthers(t *testing.T) {
	// p1 restores 3 units onto a stock of 7 even though p2 fails.
	stock := map[string]int{"p1": 7}
	boom := errors.New("db down")

	res := restoreEach(context.Background(), []Line{
		{ProductID: "p2", Quantity: 1},
		{ProductID: "p1", Quantity: 3},
	}, func(_ context.Context, ln Line) error {
		if ln.ProductID == "p2" {
			return boom
		}
		stock[ln.ProductID] += ln.Quantity
		return nil
	})

	assert.False(t, res.AllRestored())
	assert.Equal(t, 10, stock["p1"])

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "p2", res.Failures[0].ProductID)
	assert.ErrorIs(t, res.Failures[0].Err, boom)
	assert.Equal(t, boom.Error(), res.Failures[0].Reason)

	require.Len(t, res.Restored, 1)
	assert.Equal(t, "p1", res.Restored[0].ProductID)
}

func TestRestoreEach_InvalidQuantityCollected(t *testing.T) {
	called := 0
	res := restoreEach(context.Background(), []Line{
		{ProductID: "p1", Quantity: 0},
		{ProductID: "p2", Quantity: 2},
	}, func(_ context.Context, ln Line) error {
		called++
		return nil
	})

	assert.Equal(t, 1, called, "the invalid line must not reach the store")
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, ErrInvalidQuantity)
	assert.Len(t, res.Restored, 1)
}

func TestErrorMessages(t *testing.T) {
	stock := &InsufficientStockError{ProductID: "p9", Requested: 4, Available: 1}
	assert.Contains(t, stock.Error(), "p9")
	assert.Contains(t, stock.Error(), "requested 4")
	assert.Contains(t, stock.Error(), "available 1")

	missing := &ProductNotFoundError{ProductID: "p9"}
	assert.Contains(t, missing.Error(), "p9")
}
