package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `id, title, price_cents, quantity, vendor_id, vendor_name, category, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, title, price_cents, quantity, vendor_id, vendor_name, category)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+productColumns,
		p.ID, p.Title, p.PriceCents, p.Quantity, p.VendorID, p.VendorName, p.Category)
	return scanProduct(row)
}

// Update edits title/price/category and, for a vendor restock, the
// quantity; the write is vendor-scoped so nobody edits foreign stock.
func (r *Repo) Update(ctx context.Context, p Product) (Product, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE products
		SET title=$3, price_cents=$4, quantity=$5, category=$6, updated_at=now()
		WHERE id=$1 AND vendor_id=$2
		RETURNING `+productColumns,
		p.ID, p.VendorID, p.Title, p.PriceCents, p.Quantity, p.Category)
	out, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish missing from foreign-owned for a useful error.
		if _, gerr := r.Get(ctx, p.ID); gerr == nil {
			return Product{}, ErrNotOwner
		}
		return Product{}, ErrNotFound
	}
	return out, err
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *Repo) List(ctx context.Context, category string) ([]Product, error) {
	if category != "" {
		return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE category=$1 ORDER BY title`, category)
	}
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY title`)
}

func (r *Repo) ListByVendor(ctx context.Context, vendorID string) ([]Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE vendor_id=$1 ORDER BY title`, vendorID)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Title, &p.PriceCents, &p.Quantity, &p.VendorID, &p.VendorName,
		&p.Category, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
