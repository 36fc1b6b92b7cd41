package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/insights/internal/types"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func intPtr(n int) *int            { return &n }
func floatP(f float64) *float64    { return &f }
func timeP(t time.Time) *time.Time { return &t }

// fixture loads two landlords with a handful of properties, leases, payments
// and tickets.
func fixture(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	addr := func(city string) types.Address {
		return types.Address{Line1: "1 Main St", City: city, State: "OR", PostalCode: "97201"}
	}

	require.NoError(t, s.PutLandlord(ctx, types.Landlord{ID: "ll-1", Name: "Cascade Homes", Email: "ops@cascade.example"}))
	require.NoError(t, s.PutLandlord(ctx, types.Landlord{ID: "ll-2", Name: "Other"}))

	props := []types.Property{
		{ID: "p-1", LandlordID: "ll-1", Name: "Alder 1", Address: addr("Portland"), PropertyType: types.PropertyApartment,
			Bedrooms: intPtr(2), SquareFeet: floatP(850), Amenities: []string{"laundry", "parking"}, MonthlyRent: 1800, Status: types.PropertyStatusActive},
		{ID: "p-2", LandlordID: "ll-1", Name: "Alder 2", Address: addr("Portland"), PropertyType: types.PropertyApartment,
			Bedrooms: intPtr(2), MonthlyRent: 1900, Status: types.PropertyStatusActive},
		{ID: "p-3", LandlordID: "ll-2", Name: "Birch", Address: addr("Portland"), PropertyType: types.PropertyApartment,
			Bedrooms: intPtr(2), MonthlyRent: 2000, Status: types.PropertyStatusActive},
		{ID: "p-4", LandlordID: "ll-2", Name: "Cedar", Address: addr("Portland"), PropertyType: types.PropertyApartment,
			Bedrooms: intPtr(2), MonthlyRent: 2100, Status: types.PropertyStatusInactive},
		{ID: "p-5", LandlordID: "ll-2", Name: "Dogwood", Address: addr("Salem"), PropertyType: types.PropertyApartment,
			Bedrooms: intPtr(2), MonthlyRent: 1500, Status: types.PropertyStatusActive},
	}
	for _, p := range props {
		require.NoError(t, s.PutProperty(ctx, p))
	}

	leases := []types.Lease{
		{ID: "l-1", PropertyID: "p-1", TenantID: "t-1", StartDate: now.AddDate(-1, 0, 0), EndDate: now.AddDate(0, 3, 0), MonthlyRent: 1800, Status: types.LeaseActive},
		{ID: "l-0", PropertyID: "p-1", TenantID: "t-0", StartDate: now.AddDate(-3, 0, 0), EndDate: now.AddDate(-1, 0, -1), MonthlyRent: 1700,
			Status: types.LeaseTerminated, TerminatedEarly: true, TerminatedAt: timeP(now.AddDate(-1, -2, 0))},
		{ID: "l-2", PropertyID: "p-2", TenantID: "t-2", StartDate: now.AddDate(0, -6, 0), EndDate: now.AddDate(0, 6, 0), MonthlyRent: 1900, Status: types.LeaseActive},
		{ID: "l-3", PropertyID: "p-3", TenantID: "t-3", StartDate: now.AddDate(0, -2, 0), EndDate: now.AddDate(1, 0, 0), MonthlyRent: 2000, Status: types.LeaseActive},
	}
	for _, l := range leases {
		require.NoError(t, s.PutLease(ctx, l))
	}

	for i := 0; i < 4; i++ {
		due := now.AddDate(0, -i, -10)
		status := types.PaymentPaid
		if i == 2 {
			status = types.PaymentLate
		}
		require.NoError(t, s.PutPayment(ctx, types.Payment{
			ID: "pay-1-" + string(rune('a'+i)), LeaseID: "l-1", PropertyID: "p-1", Amount: 1800, DueDate: due,
			PaidAt: timeP(due.AddDate(0, 0, 1)), Status: status,
		}))
	}
	require.NoError(t, s.PutPayment(ctx, types.Payment{ID: "pay-2-a", LeaseID: "l-2", PropertyID: "p-2", Amount: 1900, DueDate: now.AddDate(0, -1, 0), Status: types.PaymentMissed}))

	tickets := []types.MaintenanceTicket{
		{ID: "tk-1", PropertyID: "p-1", Title: "Leaky faucet", Priority: types.TicketPriorityLow, Status: types.TicketResolved, Cost: 120,
			CreatedAt: now.AddDate(0, -5, 0), ResolvedAt: timeP(now.AddDate(0, -5, 2))},
		{ID: "tk-2", PropertyID: "p-1", Title: "No heat", Priority: types.TicketPriorityEmergency, Status: types.TicketOpen, Cost: 0,
			CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "tk-3", PropertyID: "p-2", Title: "Broken blinds", Priority: types.TicketPriorityLow, Status: types.TicketClosed, Cost: 60,
			CreatedAt: now.AddDate(-2, 0, 0)},
	}
	for _, tk := range tickets {
		require.NoError(t, s.PutTicket(ctx, tk))
	}

	require.NoError(t, s.PutTenant(ctx, types.Tenant{
		ID: "t-1", FirstName: "Dana", LastName: "Reyes", Email: "dana@example.com", Phone: "555-0101",
		BudgetMin: floatP(1500), BudgetMax: floatP(2000), Preferences: []string{"quiet", "pets"},
	}))
	require.NoError(t, s.PutTenant(ctx, types.Tenant{ID: "t-2", FirstName: "Sam"}))
}

// exerciseStore runs the same assertions against any backend.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	fixture(t, s)

	t.Run("not found", func(t *testing.T) {
		_, err := s.Landlord(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Property(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Lease(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Tenant(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("property round trip", func(t *testing.T) {
		p, err := s.Property(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, "Portland", p.Address.City)
		require.NotNil(t, p.Bedrooms)
		assert.Equal(t, 2, *p.Bedrooms)
		require.NotNil(t, p.SquareFeet)
		assert.Equal(t, 850.0, *p.SquareFeet)
		assert.Nil(t, p.Bathrooms)
		assert.Equal(t, []string{"laundry", "parking"}, p.Amenities)

		p2, err := s.Property(ctx, "p-2")
		require.NoError(t, err)
		assert.Nil(t, p2.SquareFeet)
		assert.Empty(t, p2.Amenities)
	})

	t.Run("landlord portfolio", func(t *testing.T) {
		l, err := s.Landlord(ctx, "ll-1")
		require.NoError(t, err)
		assert.Equal(t, "Cascade Homes", l.Name)

		props, err := s.PropertiesByLandlord(ctx, "ll-1")
		require.NoError(t, err)
		require.Len(t, props, 2)
		assert.Equal(t, "p-1", props[0].ID)
		assert.Equal(t, "p-2", props[1].ID)
	})

	t.Run("leases", func(t *testing.T) {
		all, err := s.LeasesByProperty(ctx, "p-1")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "l-0", all[0].ID, "ordered by start date")
		assert.True(t, all[0].TerminatedEarly)
		require.NotNil(t, all[0].TerminatedAt)
		assert.True(t, all[0].TerminatedAt.Equal(now.AddDate(-1, -2, 0)))

		active, err := s.LeasesByLandlord(ctx, "ll-1", types.LeaseActive)
		require.NoError(t, err)
		ids := []string{}
		for _, l := range active {
			ids = append(ids, l.ID)
		}
		assert.ElementsMatch(t, []string{"l-1", "l-2"}, ids)

		l, err := s.Lease(ctx, "l-1")
		require.NoError(t, err)
		assert.True(t, l.EndDate.Equal(now.AddDate(0, 3, 0)))
		assert.Equal(t, "t-1", l.TenantID)
	})

	t.Run("payments", func(t *testing.T) {
		byLease, err := s.Payments(ctx, PaymentFilter{LeaseID: "l-1"})
		require.NoError(t, err)
		require.Len(t, byLease, 4)
		for i := 1; i < len(byLease); i++ {
			assert.True(t, byLease[i-1].DueDate.Before(byLease[i].DueDate))
		}
		require.NotNil(t, byLease[0].PaidAt)

		recent, err := s.Payments(ctx, PaymentFilter{LeaseID: "l-1", Since: now.AddDate(0, -2, -15), Until: now})
		require.NoError(t, err)
		assert.Len(t, recent, 3)

		byProperty, err := s.Payments(ctx, PaymentFilter{PropertyIDs: []string{"p-1", "p-2"}})
		require.NoError(t, err)
		assert.Len(t, byProperty, 5)
	})

	t.Run("tickets", func(t *testing.T) {
		all, err := s.Tickets(ctx, TicketFilter{PropertyIDs: []string{"p-1", "p-2"}})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "tk-3", all[0].ID)

		open, err := s.Tickets(ctx, TicketFilter{PropertyIDs: []string{"p-1"}, Statuses: []string{types.TicketOpen, types.TicketInProgress}})
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, "tk-2", open[0].ID)
		assert.Nil(t, open[0].ResolvedAt)

		recent, err := s.Tickets(ctx, TicketFilter{PropertyIDs: []string{"p-1", "p-2"}, Since: now.AddDate(-1, 0, 0)})
		require.NoError(t, err)
		assert.Len(t, recent, 2)
	})

	t.Run("tenant", func(t *testing.T) {
		tn, err := s.Tenant(ctx, "t-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"quiet", "pets"}, tn.Preferences)
		require.NotNil(t, tn.BudgetMax)
		assert.Equal(t, 2000.0, *tn.BudgetMax)

		sparse, err := s.Tenant(ctx, "t-2")
		require.NoError(t, err)
		assert.Nil(t, sparse.BudgetMin)
		assert.Empty(t, sparse.Email)
	})

	t.Run("comparables", func(t *testing.T) {
		p, err := s.Property(ctx, "p-1")
		require.NoError(t, err)
		comps, err := s.Comparables(ctx, CriteriaFor(p, 0))
		require.NoError(t, err)

		ids := []string{}
		for _, c := range comps {
			ids = append(ids, c.ID)
		}
		// p-4 is inactive and p-5 is in another city.
		assert.Equal(t, []string{"p-2", "p-3"}, ids)

		folded, err := s.Comparables(ctx, ComparableCriteria{
			ExcludeID: "p-1", City: "PORTLAND", State: "or", PropertyType: types.PropertyApartment, Bedrooms: intPtr(2),
		})
		require.NoError(t, err)
		foldedIDs := []string{}
		for _, c := range folded {
			foldedIDs = append(foldedIDs, c.ID)
		}
		assert.Equal(t, ids, foldedIDs, "city and state match case-insensitively")

		limited, err := s.Comparables(ctx, ComparableCriteria{State: "OR", Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("put replaces", func(t *testing.T) {
		p, err := s.Property(ctx, "p-2")
		require.NoError(t, err)
		p.MonthlyRent = 1950
		require.NoError(t, s.PutProperty(ctx, p))

		got, err := s.Property(ctx, "p-2")
		require.NoError(t, err)
		assert.Equal(t, 1950.0, got.MonthlyRent)
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLStore_SQLite(t *testing.T) {
	s, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()), "migrate is idempotent")
	exerciseStore(t, s)
}

func TestTables(t *testing.T) {
	tables := Tables()
	require.Len(t, tables, 6)
	for _, tbl := range tables {
		require.Len(t, tbl.PrimaryKey, 1, tbl.Name)
		assert.Equal(t, "id", tbl.PrimaryKey[0].Name, tbl.Name)
		for _, idx := range tbl.Indexes {
			assert.Len(t, idx.Columns, 1, "index %s resolves its column", idx.Name)
		}
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "root@/db")
	assert.Error(t, err)
}

func TestComparableCriteria_EffectiveLimit(t *testing.T) {
	assert.Equal(t, DefaultComparableLimit, ComparableCriteria{}.EffectiveLimit())
	assert.Equal(t, 7, ComparableCriteria{Limit: 7}.EffectiveLimit())
	assert.Equal(t, MaxComparableLimit, ComparableCriteria{Limit: 500}.EffectiveLimit())
}
