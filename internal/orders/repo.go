package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("orders: not found")

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, buyer_id, buyer_contact, product_id, product_title, quantity,
	price_cents, total_cents, vendor_id, vendor_name, shipping,
	payment_method, payment_status, gateway_order_id, status,
	created_at, updated_at, paid_at`

// InsertTx writes the fan-out rows of one checkout inside the ledger
// transaction.
func (r *Repo) InsertTx(ctx context.Context, tx pgx.Tx, recs []Order) error {
	for _, o := range recs {
		ship, err := json.Marshal(o.Shipping)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO orders(id, buyer_id, buyer_contact, product_id, product_title, quantity,
			                   price_cents, total_cents, vendor_id, vendor_name, shipping,
			                   payment_method, payment_status, gateway_order_id, status,
			                   created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$16)`,
			o.ID, o.BuyerID, o.BuyerContact, o.ProductID, o.ProductTitle, o.Quantity,
			o.PriceCents, o.TotalCents, o.VendorID, o.VendorName, ship,
			o.PaymentMethod, o.PaymentStatus, o.GatewayOrderID, o.Status,
			o.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *Repo) ListByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE buyer_id=$1 ORDER BY created_at DESC`, buyerID)
}

func (r *Repo) ListByVendor(ctx context.Context, vendorID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE vendor_id=$1 ORDER BY created_at DESC`, vendorID)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatusCAS flips status only when the row is still in the state
// the caller saw. A stale write (rapid double-click) loses cleanly.
func (r *Repo) UpdateStatusCAS(ctx context.Context, id string, from, to Status) (bool, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`,
		id, from, to)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// MarkPaidByGatewayOrder marks every row of one online checkout as paid
// and returns their ids.
func (r *Repo) MarkPaidByGatewayOrder(ctx context.Context, gatewayOrderID string) ([]string, error) {
	rows, err := r.DB.Query(ctx, `
		UPDATE orders SET payment_status=$2, paid_at=now(), updated_at=now()
		WHERE gateway_order_id=$1 AND payment_status=$3
		RETURNING id`,
		gatewayOrderID, PaymentPaid, PaymentPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkPaid settles a single order (cash collected on delivery).
func (r *Repo) MarkPaid(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET payment_status=$2, paid_at=now(), updated_at=now()
		WHERE id=$1 AND payment_status=$3`,
		id, PaymentPaid, PaymentPending)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o      Order
		ship   []byte
		paidAt *time.Time
	)
	err := row.Scan(&o.ID, &o.BuyerID, &o.BuyerContact, &o.ProductID, &o.ProductTitle, &o.Quantity,
		&o.PriceCents, &o.TotalCents, &o.VendorID, &o.VendorName, &ship,
		&o.PaymentMethod, &o.PaymentStatus, &o.GatewayOrderID, &o.Status,
		&o.CreatedAt, &o.UpdatedAt, &paidAt)
	if err != nil {
		return Order{}, err
	}
	if len(ship) > 0 {
		if err := json.Unmarshal(ship, &o.Shipping); err != nil {
			return Order{}, err
		}
	}
	o.PaidAt = paidAt
	return o, nil
}
