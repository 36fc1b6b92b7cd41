package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/matthewbaird/insights/internal/types"
)

// MemoryStore implements Store using in-memory maps.
// Intended for demos and testing; no database required.
type MemoryStore struct {
	mu         sync.RWMutex
	landlords  map[string]types.Landlord
	properties map[string]types.Property
	leases     map[string]types.Lease
	payments   map[string]types.Payment
	tickets    map[string]types.MaintenanceTicket
	tenants    map[string]types.Tenant
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		landlords:  make(map[string]types.Landlord),
		properties: make(map[string]types.Property),
		leases:     make(map[string]types.Lease),
		payments:   make(map[string]types.Payment),
		tickets:    make(map[string]types.MaintenanceTicket),
		tenants:    make(map[string]types.Tenant),
	}
}

func (s *MemoryStore) Landlord(_ context.Context, id string) (types.Landlord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.landlords[id]
	if !ok {
		return types.Landlord{}, fmt.Errorf("landlord %s: %w", id, ErrNotFound)
	}
	return l, nil
}

func (s *MemoryStore) Property(_ context.Context, id string) (types.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	if !ok {
		return types.Property{}, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) PropertiesByLandlord(_ context.Context, landlordID string) ([]types.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Property
	for _, p := range s.properties {
		if p.LandlordID == landlordID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Lease(_ context.Context, id string) (types.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leases[id]
	if !ok {
		return types.Lease{}, fmt.Errorf("lease %s: %w", id, ErrNotFound)
	}
	return l, nil
}

func (s *MemoryStore) LeasesByProperty(_ context.Context, propertyID string, statuses ...string) ([]types.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLeases(func(l types.Lease) bool { return l.PropertyID == propertyID }, statuses), nil
}

func (s *MemoryStore) LeasesByLandlord(_ context.Context, landlordID string, statuses ...string) ([]types.Lease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLeases(func(l types.Lease) bool {
		p, ok := s.properties[l.PropertyID]
		return ok && p.LandlordID == landlordID
	}, statuses), nil
}

// filterLeases must be called with the read lock held.
func (s *MemoryStore) filterLeases(match func(types.Lease) bool, statuses []string) []types.Lease {
	var out []types.Lease
	for _, l := range s.leases {
		if !match(l) {
			continue
		}
		if len(statuses) > 0 && !contains(statuses, l.Status) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryStore) Payments(_ context.Context, f PaymentFilter) ([]types.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Payment
	for _, p := range s.payments {
		if f.LeaseID != "" && p.LeaseID != f.LeaseID {
			continue
		}
		if len(f.PropertyIDs) > 0 && !contains(f.PropertyIDs, p.PropertyID) {
			continue
		}
		if !inRange(p.DueDate, f.Since, f.Until) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Tickets(_ context.Context, f TicketFilter) ([]types.MaintenanceTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.MaintenanceTicket
	for _, t := range s.tickets {
		if len(f.PropertyIDs) > 0 && !contains(f.PropertyIDs, t.PropertyID) {
			continue
		}
		if len(f.Statuses) > 0 && !contains(f.Statuses, t.Status) {
			continue
		}
		if !inRange(t.CreatedAt, f.Since, f.Until) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Tenant(_ context.Context, id string) (types.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[id]
	if !ok {
		return types.Tenant{}, fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (s *MemoryStore) Comparables(_ context.Context, c ComparableCriteria) ([]types.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Property
	for _, p := range s.properties {
		if p.ID == c.ExcludeID || p.Status != types.PropertyStatusActive {
			continue
		}
		if c.City != "" && !strings.EqualFold(p.Address.City, c.City) {
			continue
		}
		if c.State != "" && !strings.EqualFold(p.Address.State, c.State) {
			continue
		}
		if c.PropertyType != "" && p.PropertyType != c.PropertyType {
			continue
		}
		if c.Bedrooms != nil && (p.Bedrooms == nil || *p.Bedrooms != *c.Bedrooms) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit := c.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) PutLandlord(_ context.Context, l types.Landlord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.landlords[l.ID] = l
	return nil
}

func (s *MemoryStore) PutProperty(_ context.Context, p types.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[p.ID] = p
	return nil
}

func (s *MemoryStore) PutLease(_ context.Context, l types.Lease) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leases[l.ID] = l
	return nil
}

func (s *MemoryStore) PutPayment(_ context.Context, p types.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return nil
}

func (s *MemoryStore) PutTicket(_ context.Context, t types.MaintenanceTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.ID] = t
	return nil
}

func (s *MemoryStore) PutTenant(_ context.Context, t types.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = t
	return nil
}
