package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Line is one (product, quantity) pair of a checkout or a restoration.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

var ErrInvalidQuantity = errors.New("inventory: quantity must be greater than zero")

type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("inventory: product not found: %s", e.ProductID)
}

type RestoreFailure struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Err       error  `json:"-"`
	Reason    string `json:"reason"`
}

// RestoreResult is a partial-success outcome: failed lines never undo
// the lines that were already restored.
type RestoreResult struct {
	Restored []Line
	Failures []RestoreFailure
}

func (r RestoreResult) AllRestored() bool { return len(r.Failures) == 0 }

// Ledger owns every write to products.quantity on the order path.
// Vendors restock through the catalog; order placement and cancellation
// go through Checkout and Restore only.
type Ledger struct{ DB *pgxpool.Pool }

// Checkout locks every product row (FOR UPDATE), verifies stock for the
// whole cart, decrements each line, then runs persist inside the same
// transaction so order rows are never written against unchecked stock.
// Any shortage or missing product rolls the whole thing back.
func (l *Ledger) Checkout(ctx context.Context, lines []Line, persist func(pgx.Tx) error) error {
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}

	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, ln := range lines {
		var stock int
		err := tx.QueryRow(ctx, `SELECT quantity FROM products WHERE id=$1 FOR UPDATE`, ln.ProductID).Scan(&stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return &ProductNotFoundError{ProductID: ln.ProductID}
		}
		if err != nil {
			return err
		}
		if stock < ln.Quantity {
			return &InsufficientStockError{ProductID: ln.ProductID, Requested: ln.Quantity, Available: stock}
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET quantity = quantity - $2, updated_at = now() WHERE id=$1`,
			ln.ProductID, ln.Quantity); err != nil {
			return err
		}
	}

	if persist != nil {
		if err := persist(tx); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Restore is the compensating action for a cancellation. Each line is
// attempted once in its own statement; a failure is collected, never
// fatal to the rest of the batch.
func (l *Ledger) Restore(ctx context.Context, lines []Line) RestoreResult {
	return restoreEach(ctx, lines, l.restoreLine)
}

func (l *Ledger) restoreLine(ctx context.Context, ln Line) error {
	ct, err := l.DB.Exec(ctx, `UPDATE products SET quantity = quantity + $2, updated_at = now() WHERE id=$1`,
		ln.ProductID, ln.Quantity)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return &ProductNotFoundError{ProductID: ln.ProductID}
	}
	return nil
}

func restoreEach(ctx context.Context, lines []Line, fn func(context.Context, Line) error) RestoreResult {
	var res RestoreResult
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			res.Failures = append(res.Failures, RestoreFailure{
				ProductID: ln.ProductID, Quantity: ln.Quantity,
				Err: ErrInvalidQuantity, Reason: ErrInvalidQuantity.Error(),
			})
			continue
		}
		if err := fn(ctx, ln); err != nil {
			res.Failures = append(res.Failures, RestoreFailure{
				ProductID: ln.ProductID, Quantity: ln.Quantity,
				Err: err, Reason: err.Error(),
			})
			continue
		}
		res.Restored = append(res.Restored, ln)
	}
	return res
}
