package leases

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("leases: request not found")
	ErrInvalidTransition = errors.New("leases: invalid status transition")
	ErrNotOwner          = errors.New("leases: actor does not own this request")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Landowner decides a pending request; the tenant may withdraw it while
// it is still pending. No inventory or payment coupling.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusApproved: true, StatusRejected: true, StatusCancelled: true},
	StatusApproved:  {},
	StatusRejected:  {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

type LeaseRequest struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	LandownerID string    `json:"landowner_id"`
	TenantID    string    `json:"tenant_id"`
	Message     string    `json:"message,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
