package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/insights/internal/store"
	"github.com/matthewbaird/insights/internal/types"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func checkDemo(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	props, err := s.PropertiesByLandlord(ctx, DemoLandlordID)
	require.NoError(t, err)
	require.Len(t, props, len(DemoPropertyIDs))

	active, err := s.LeasesByLandlord(ctx, DemoLandlordID, types.LeaseActive)
	require.NoError(t, err)
	assert.Len(t, active, 4)

	payments, err := s.Payments(ctx, store.PaymentFilter{LeaseID: "demo-lease-studio"})
	require.NoError(t, err)
	assert.Len(t, payments, 12)
	var missed int
	for _, p := range payments {
		if p.Status == types.PaymentMissed {
			missed++
		}
	}
	assert.Equal(t, 2, missed)

	apt, err := s.Property(ctx, DemoPropertyIDs[0])
	require.NoError(t, err)
	comps, err := s.Comparables(ctx, store.CriteriaFor(apt, 0))
	require.NoError(t, err)
	assert.Len(t, comps, 3, "the other apartment plus two market units")
}

func TestDemo_MemoryStoreIdempotent(t *testing.T) {
	ms := store.NewMemoryStore()
	require.NoError(t, Demo(context.Background(), ms, now))
	require.NoError(t, Demo(context.Background(), ms, now))
	checkDemo(t, ms)
}

func TestDemo_SQLStore(t *testing.T) {
	s, err := store.Open(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))

	require.NoError(t, Demo(context.Background(), s, now))
	checkDemo(t, s)
}
