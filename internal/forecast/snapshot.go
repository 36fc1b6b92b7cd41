// Package forecast projects portfolio revenue, maintenance cost and net
// income forward month by month, and derives sensitivity scenarios from the
// projected curve.
package forecast

import (
	"sort"
	"time"

	"github.com/matthewbaird/insights/internal/types"
)

// Ticket history kept per property and the window used for the maintenance
// baseline.
const (
	TicketHistoryMonths   = 24
	MaintenanceBaseMonths = 12
)

// BuildSnapshot assembles the current state of a set of properties from their
// leases and maintenance tickets. Properties are returned in input order.
func BuildSnapshot(properties []types.Property, leases []types.Lease, tickets []types.MaintenanceTicket, now time.Time) types.PortfolioSnapshot {
	leasesByProperty := make(map[string][]types.Lease)
	for _, l := range leases {
		leasesByProperty[l.PropertyID] = append(leasesByProperty[l.PropertyID], l)
	}
	ticketsByProperty := make(map[string][]types.MaintenanceTicket)
	ticketSince := now.AddDate(0, -TicketHistoryMonths, 0)
	maintSince := now.AddDate(0, -MaintenanceBaseMonths, 0)
	var maintTotal float64
	for _, t := range tickets {
		if t.CreatedAt.Before(ticketSince) || t.CreatedAt.After(now) {
			continue
		}
		ticketsByProperty[t.PropertyID] = append(ticketsByProperty[t.PropertyID], t)
		if !t.CreatedAt.Before(maintSince) {
			maintTotal += t.Cost
		}
	}

	snap := types.PortfolioSnapshot{
		Properties:    make([]types.PropertyState, 0, len(properties)),
		PropertyCount: len(properties),
	}
	var occupied int
	for _, p := range properties {
		history := leasesByProperty[p.ID]
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].StartDate.After(history[j].StartDate)
		})

		state := types.PropertyState{
			Property:    p,
			CurrentRent: p.MonthlyRent,
			Tickets:     ticketsByProperty[p.ID],
			Leases:      history,
		}
		for i := range history {
			if history[i].IsActiveAt(now) {
				active := history[i]
				state.ActiveLease = &active
				state.HasActiveLease = true
				state.CurrentRent = active.MonthlyRent
				break
			}
		}
		if state.HasActiveLease {
			occupied++
			snap.TotalMonthlyRevenue += state.CurrentRent
		}
		snap.Properties = append(snap.Properties, state)
	}

	if snap.PropertyCount > 0 {
		snap.OccupancyRate = types.Round2(float64(occupied) / float64(snap.PropertyCount) * 100)
	}
	snap.TotalMonthlyRevenue = types.Round2(snap.TotalMonthlyRevenue)
	snap.AverageMonthlyMaintenanceCost = types.Round2(maintTotal / MaintenanceBaseMonths)
	return snap
}
