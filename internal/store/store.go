// Package store provides the read-only query collaborators the analytics
// engine consumes, plus the writer used by seeding and tests. Two backends
// exist: MemoryStore for demos and tests, and SQLStore for SQLite/Postgres.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/matthewbaird/insights/internal/types"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// Comparable result limits.
const (
	DefaultComparableLimit = 20
	MaxComparableLimit     = 50
)

// PortfolioQuery reads portfolio state. Implementations never mutate data.
type PortfolioQuery interface {
	Landlord(ctx context.Context, id string) (types.Landlord, error)
	Property(ctx context.Context, id string) (types.Property, error)
	PropertiesByLandlord(ctx context.Context, landlordID string) ([]types.Property, error)
	Lease(ctx context.Context, id string) (types.Lease, error)
	// LeasesByProperty and LeasesByLandlord return all leases when no
	// statuses are given.
	LeasesByProperty(ctx context.Context, propertyID string, statuses ...string) ([]types.Lease, error)
	LeasesByLandlord(ctx context.Context, landlordID string, statuses ...string) ([]types.Lease, error)
	Payments(ctx context.Context, f PaymentFilter) ([]types.Payment, error)
	Tickets(ctx context.Context, f TicketFilter) ([]types.MaintenanceTicket, error)
	Tenant(ctx context.Context, id string) (types.Tenant, error)
}

// ComparableQuery finds active properties similar to a given one.
type ComparableQuery interface {
	Comparables(ctx context.Context, c ComparableCriteria) ([]types.Property, error)
}

// Writer inserts or replaces records.
type Writer interface {
	PutLandlord(ctx context.Context, l types.Landlord) error
	PutProperty(ctx context.Context, p types.Property) error
	PutLease(ctx context.Context, l types.Lease) error
	PutPayment(ctx context.Context, p types.Payment) error
	PutTicket(ctx context.Context, t types.MaintenanceTicket) error
	PutTenant(ctx context.Context, t types.Tenant) error
}

// Store is implemented by both backends.
type Store interface {
	PortfolioQuery
	ComparableQuery
	Writer
}

// PaymentFilter selects payments by lease or by property. Zero times leave
// the range open. Results are ordered by due date, oldest first.
type PaymentFilter struct {
	LeaseID     string
	PropertyIDs []string
	Since       time.Time
	Until       time.Time
}

// TicketFilter selects maintenance tickets by property, creation time and
// status. Results are ordered by creation time, oldest first.
type TicketFilter struct {
	PropertyIDs []string
	Since       time.Time
	Until       time.Time
	Statuses    []string
}

// ComparableCriteria describes the properties to compare against. Empty
// fields are not filtered on. Results are ordered by id.
type ComparableCriteria struct {
	City         string
	State        string
	PropertyType string
	Bedrooms     *int
	ExcludeID    string
	Limit        int // default 20, at most 50
}

// EffectiveLimit returns the limit clamped to (0, MaxComparableLimit].
func (c ComparableCriteria) EffectiveLimit() int {
	switch {
	case c.Limit <= 0:
		return DefaultComparableLimit
	case c.Limit > MaxComparableLimit:
		return MaxComparableLimit
	default:
		return c.Limit
	}
}

// CriteriaFor builds comparable criteria for p.
func CriteriaFor(p types.Property, limit int) ComparableCriteria {
	return ComparableCriteria{
		City:         p.Address.City,
		State:        p.Address.State,
		PropertyType: p.PropertyType,
		Bedrooms:     p.Bedrooms,
		ExcludeID:    p.ID,
		Limit:        limit,
	}
}

func inRange(t, since, until time.Time) bool {
	if !since.IsZero() && t.Before(since) {
		return false
	}
	if !until.IsZero() && t.After(until) {
		return false
	}
	return true
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
