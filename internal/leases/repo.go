package leases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const leaseColumns = `id, property_id, landowner_id, tenant_id, message, status, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, lr LeaseRequest) (LeaseRequest, error) {
	if lr.ID == "" {
		lr.ID = uuid.NewString()
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO lease_requests(id, property_id, landowner_id, tenant_id, message, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+leaseColumns,
		lr.ID, lr.PropertyID, lr.LandownerID, lr.TenantID, lr.Message, StatusPending)
	return scanLease(row)
}

func (r *Repo) Get(ctx context.Context, id string) (LeaseRequest, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+leaseColumns+` FROM lease_requests WHERE id=$1`, id)
	lr, err := scanLease(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaseRequest{}, ErrNotFound
	}
	return lr, err
}

func (r *Repo) ListByTenant(ctx context.Context, tenantID string) ([]LeaseRequest, error) {
	return r.list(ctx, `SELECT `+leaseColumns+` FROM lease_requests WHERE tenant_id=$1 ORDER BY created_at DESC`, tenantID)
}

func (r *Repo) ListByLandowner(ctx context.Context, landownerID string) ([]LeaseRequest, error) {
	return r.list(ctx, `SELECT `+leaseColumns+` FROM lease_requests WHERE landowner_id=$1 ORDER BY created_at DESC`, landownerID)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]LeaseRequest, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaseRequest
	for rows.Next() {
		lr, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateStatusCAS(ctx context.Context, id string, from, to Status) (bool, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE lease_requests SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`,
		id, from, to)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLease(row rowScanner) (LeaseRequest, error) {
	var lr LeaseRequest
	err := row.Scan(&lr.ID, &lr.PropertyID, &lr.LandownerID, &lr.TenantID, &lr.Message,
		&lr.Status, &lr.CreatedAt, &lr.UpdatedAt)
	return lr, err
}
