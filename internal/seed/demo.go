// Package seed provides demo portfolio data for the memory and SQL stores.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/matthewbaird/insights/internal/store"
	"github.com/matthewbaird/insights/internal/types"
)

// DemoLandlordID owns the demo portfolio.
const DemoLandlordID = "demo-landlord"

// DemoPropertyIDs lists the demo landlord's properties.
var DemoPropertyIDs = []string{"demo-ocean-1a", "demo-ocean-2b", "demo-wilshire-studio", "demo-montana-house"}

// Demo writes a small Santa Monica portfolio with a year of payments and
// maintenance history ending at now. Records are upserted, so seeding twice
// is harmless.
func Demo(ctx context.Context, w store.Writer, now time.Time) error {
	now = now.UTC()
	santaMonica := func(line1 string) types.Address {
		return types.Address{Line1: line1, City: "Santa Monica", State: "CA", PostalCode: "90401"}
	}

	landlords := []types.Landlord{
		{ID: DemoLandlordID, Name: "Ocean Avenue Holdings", Email: "owner@example.com"},
		{ID: "demo-market", Name: "Neighbouring Owners"},
	}

	// ── Properties ───────────────────────────────────────────────────
	properties := []types.Property{
		{
			ID: DemoPropertyIDs[0], LandlordID: DemoLandlordID, Name: "Ocean Ave 1A",
			Address: santaMonica("1200 Ocean Ave Apt 1A"), PropertyType: types.PropertyApartment,
			Bedrooms: intPtr(2), Bathrooms: floatPtr(1), SquareFeet: floatPtr(950),
			Amenities: []string{"parking", "laundry"}, MonthlyRent: 3200, Status: types.PropertyStatusActive,
		},
		{
			ID: DemoPropertyIDs[1], LandlordID: DemoLandlordID, Name: "Ocean Ave 2B",
			Address: santaMonica("1200 Ocean Ave Apt 2B"), PropertyType: types.PropertyApartment,
			Bedrooms: intPtr(2), Bathrooms: floatPtr(2), SquareFeet: floatPtr(1020),
			Amenities: []string{"balcony"}, MonthlyRent: 3650, Status: types.PropertyStatusActive,
		},
		{
			ID: DemoPropertyIDs[2], LandlordID: DemoLandlordID, Name: "Wilshire Studio",
			Address: santaMonica("2400 Wilshire Blvd #5"), PropertyType: types.PropertyStudio,
			MonthlyRent: 2100, Status: types.PropertyStatusActive,
		},
		{
			ID: DemoPropertyIDs[3], LandlordID: DemoLandlordID, Name: "Montana House",
			Address: santaMonica("815 Montana Ave"), PropertyType: types.PropertyHouse,
			Bedrooms: intPtr(3), Bathrooms: floatPtr(2), SquareFeet: floatPtr(1800),
			Amenities: []string{"garden", "garage"}, MonthlyRent: 5400, Status: types.PropertyStatusActive,
		},
		// Comparables owned by someone else.
		{ID: "demo-comp-apt-1", LandlordID: "demo-market", Address: santaMonica("1300 Ocean Ave #3"), PropertyType: types.PropertyApartment, Bedrooms: intPtr(2), MonthlyRent: 3100, Status: types.PropertyStatusActive},
		{ID: "demo-comp-apt-2", LandlordID: "demo-market", Address: santaMonica("1410 2nd St #7"), PropertyType: types.PropertyApartment, Bedrooms: intPtr(2), MonthlyRent: 3300, Status: types.PropertyStatusActive},
		{ID: "demo-comp-studio", LandlordID: "demo-market", Address: santaMonica("2500 Wilshire Blvd #2"), PropertyType: types.PropertyStudio, MonthlyRent: 1750, Status: types.PropertyStatusActive},
	}

	// ── Tenants ──────────────────────────────────────────────────────
	tenants := []types.Tenant{
		{ID: "demo-tenant-rivera", FirstName: "Ana", LastName: "Rivera", Email: "ana@example.com", Phone: "310-555-0101", BudgetMin: floatPtr(3000), BudgetMax: floatPtr(3500), Preferences: []string{"pets", "parking"}},
		{ID: "demo-tenant-chen", FirstName: "Wei", LastName: "Chen", Email: "wei@example.com", Phone: "310-555-0102", Preferences: []string{"quiet"}},
		{ID: "demo-tenant-okafor", FirstName: "Tobi", LastName: "Okafor", Email: "tobi@example.com"},
		{ID: "demo-tenant-lund", FirstName: "Erik", LastName: "Lund", Email: "erik@example.com", Phone: "310-555-0104", BudgetMin: floatPtr(5000), BudgetMax: floatPtr(6000), Preferences: []string{"garden"}},
		{ID: "demo-tenant-past", FirstName: "Sam", LastName: "Past"},
	}

	// ── Leases ───────────────────────────────────────────────────────
	leases := []types.Lease{
		{ID: "demo-lease-1a", PropertyID: DemoPropertyIDs[0], TenantID: "demo-tenant-rivera", StartDate: now.AddDate(-2, 0, 0), EndDate: now.AddDate(0, 8, 0), MonthlyRent: 3200, Status: types.LeaseActive},
		{ID: "demo-lease-2b", PropertyID: DemoPropertyIDs[1], TenantID: "demo-tenant-chen", StartDate: now.AddDate(-1, 0, 0), EndDate: now.AddDate(0, 0, 75), MonthlyRent: 3650, Status: types.LeaseActive},
		{ID: "demo-lease-studio", PropertyID: DemoPropertyIDs[2], TenantID: "demo-tenant-okafor", StartDate: now.AddDate(0, -11, 0), EndDate: now.AddDate(0, 0, 40), MonthlyRent: 2100, Status: types.LeaseActive},
		{ID: "demo-lease-house", PropertyID: DemoPropertyIDs[3], TenantID: "demo-tenant-lund", StartDate: now.AddDate(-3, 0, 0), EndDate: now.AddDate(1, 0, 0), MonthlyRent: 5400, Status: types.LeaseActive},
		{ID: "demo-lease-studio-old", PropertyID: DemoPropertyIDs[2], TenantID: "demo-tenant-past", StartDate: now.AddDate(-2, -3, 0), EndDate: now.AddDate(-1, -3, 0), MonthlyRent: 1950, Status: types.LeaseTerminated, TerminatedEarly: true, TerminatedAt: timePtr(now.AddDate(-1, -6, 0))},
	}

	for _, l := range landlords {
		if err := w.PutLandlord(ctx, l); err != nil {
			return fmt.Errorf("seeding landlord %s: %w", l.ID, err)
		}
	}
	for _, p := range properties {
		if err := w.PutProperty(ctx, p); err != nil {
			return fmt.Errorf("seeding property %s: %w", p.ID, err)
		}
	}
	for _, t := range tenants {
		if err := w.PutTenant(ctx, t); err != nil {
			return fmt.Errorf("seeding tenant %s: %w", t.ID, err)
		}
	}
	for _, l := range leases {
		if err := w.PutLease(ctx, l); err != nil {
			return fmt.Errorf("seeding lease %s: %w", l.ID, err)
		}
	}

	// ── Payments ─────────────────────────────────────────────────────
	// The studio tenant has missed two of the last three months and the 2B
	// tenant pays late every fourth month.
	for _, l := range leases[:4] {
		for i := 0; i < 12; i++ {
			due := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
			if due.After(now) {
				continue
			}
			p := types.Payment{
				ID:         fmt.Sprintf("%s-pay-%s", l.ID, due.Format("2006-01")),
				LeaseID:    l.ID,
				PropertyID: l.PropertyID,
				Amount:     l.MonthlyRent,
				DueDate:    due,
				Status:     types.PaymentPaid,
				PaidAt:     timePtr(due.AddDate(0, 0, 1)),
			}
			switch {
			case l.ID == "demo-lease-studio" && (i == 0 || i == 2):
				p.Status, p.PaidAt = types.PaymentMissed, nil
			case l.ID == "demo-lease-2b" && i%4 == 1:
				p.Status, p.PaidAt = types.PaymentLate, timePtr(due.AddDate(0, 0, 12))
			}
			if err := w.PutPayment(ctx, p); err != nil {
				return fmt.Errorf("seeding payment %s: %w", p.ID, err)
			}
		}
	}

	// ── Maintenance ──────────────────────────────────────────────────
	tickets := []types.MaintenanceTicket{
		{ID: "demo-ticket-1", PropertyID: DemoPropertyIDs[2], Title: "Water heater failure", Priority: types.TicketPriorityEmergency, Status: types.TicketOpen, Cost: 1400, CreatedAt: now.AddDate(0, 0, -12)},
		{ID: "demo-ticket-2", PropertyID: DemoPropertyIDs[2], Title: "Mould in bathroom", Priority: types.TicketPriorityHigh, Status: types.TicketInProgress, Cost: 650, CreatedAt: now.AddDate(0, -1, 0)},
		{ID: "demo-ticket-3", PropertyID: DemoPropertyIDs[2], Title: "Broken window latch", Priority: types.TicketPriorityMedium, Status: types.TicketOpen, Cost: 120, CreatedAt: now.AddDate(0, -2, 0)},
		{ID: "demo-ticket-4", PropertyID: DemoPropertyIDs[1], Title: "Dishwasher leak", Priority: types.TicketPriorityMedium, Status: types.TicketResolved, Cost: 310, CreatedAt: now.AddDate(0, -4, 0), ResolvedAt: timePtr(now.AddDate(0, -4, 3))},
		{ID: "demo-ticket-5", PropertyID: DemoPropertyIDs[3], Title: "Gutter cleaning", Priority: types.TicketPriorityLow, Status: types.TicketClosed, Cost: 250, CreatedAt: now.AddDate(0, -7, 0), ResolvedAt: timePtr(now.AddDate(0, -7, 2))},
		{ID: "demo-ticket-6", PropertyID: DemoPropertyIDs[0], Title: "HVAC service", Priority: types.TicketPriorityLow, Status: types.TicketClosed, Cost: 180, CreatedAt: now.AddDate(0, -9, 0), ResolvedAt: timePtr(now.AddDate(0, -9, 1))},
	}
	for _, t := range tickets {
		if err := w.PutTicket(ctx, t); err != nil {
			return fmt.Errorf("seeding ticket %s: %w", t.ID, err)
		}
	}
	return nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }
