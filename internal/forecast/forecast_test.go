package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/insights/internal/policy"
	"github.com/matthewbaird/insights/internal/types"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func history(months int, revenue float64) types.TrendSeries {
	var s types.TrendSeries
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		s.Records = append(s.Records, types.MonthlyRecord{
			Month:   start.AddDate(0, i, 0).Format("2006-01"),
			Revenue: revenue,
		})
	}
	return s
}

// threeUnitPortfolio has two occupied units whose leases end within the year
// and one vacant unit.
func threeUnitPortfolio() ([]types.Property, []types.Lease) {
	props := []types.Property{
		{ID: "p1", LandlordID: "ll", MonthlyRent: 1500},
		{ID: "p2", LandlordID: "ll", MonthlyRent: 2000},
		{ID: "p3", LandlordID: "ll", MonthlyRent: 1800},
	}
	leases := []types.Lease{
		{ID: "l1", PropertyID: "p1", Status: types.LeaseActive, MonthlyRent: 1500,
			StartDate: now.AddDate(-1, 0, 0), EndDate: now.AddDate(0, 3, 0)},
		{ID: "l2", PropertyID: "p2", Status: types.LeaseActive, MonthlyRent: 2000,
			StartDate: now.AddDate(0, -4, 0), EndDate: now.AddDate(0, 8, 0)},
		{ID: "l3", PropertyID: "p3", Status: types.LeaseExpired, MonthlyRent: 1700,
			StartDate: now.AddDate(-2, 0, 0), EndDate: now.AddDate(0, -1, 0)},
	}
	return props, leases
}

func TestBuildSnapshot(t *testing.T) {
	props, leases := threeUnitPortfolio()
	tickets := []types.MaintenanceTicket{
		{ID: "t1", PropertyID: "p1", Cost: 600, CreatedAt: now.AddDate(0, -2, 0)},
		{ID: "t2", PropertyID: "p3", Cost: 600, CreatedAt: now.AddDate(0, -11, 0)},
		{ID: "t3", PropertyID: "p3", Cost: 900, CreatedAt: now.AddDate(0, -18, 0)},
		{ID: "t4", PropertyID: "p2", Cost: 100, CreatedAt: now.AddDate(0, -30, 0)},
	}

	snap := BuildSnapshot(props, leases, tickets, now)

	assert.Equal(t, 3, snap.PropertyCount)
	assert.Equal(t, 3500.0, snap.TotalMonthlyRevenue)
	assert.InDelta(t, 66.67, snap.OccupancyRate, 0.001)
	assert.Equal(t, 100.0, snap.AverageMonthlyMaintenanceCost)

	require.Len(t, snap.Properties, 3)
	assert.True(t, snap.Properties[0].HasActiveLease)
	assert.False(t, snap.Properties[2].HasActiveLease)
	assert.Equal(t, 1800.0, snap.Properties[2].CurrentRent)
	assert.Len(t, snap.Properties[2].Tickets, 2, "tickets older than 24 months are dropped")
	assert.Len(t, snap.ActiveLeases(), 2)
}

func TestProject_RejectsInvalidHorizon(t *testing.T) {
	p := policy.Default().Forecast
	for _, h := range []int{0, -3, 37} {
		_, err := Project(types.PortfolioSnapshot{}, types.TrendSeries{}, h, p, now)
		assert.ErrorIs(t, err, ErrInvalidHorizon, "horizon %d", h)
	}
}

func TestProject_ConfidenceNeverIncreases(t *testing.T) {
	p := policy.Default().Forecast
	props, leases := threeUnitPortfolio()
	snap := BuildSnapshot(props, leases, nil, now)

	for _, months := range []int{0, 3, 12, 24} {
		res, err := Project(snap, history(months, 3500), 36, p, now)
		require.NoError(t, err)
		for i := 1; i < len(res.MonthlyForecasts); i++ {
			prev, cur := res.MonthlyForecasts[i-1], res.MonthlyForecasts[i]
			assert.GreaterOrEqual(t, prev.Confidence, cur.Confidence, "history=%d month=%d", months, cur.MonthIndex)
		}
		last := res.MonthlyForecasts[len(res.MonthlyForecasts)-1]
		assert.Equal(t, p.ConfidenceFloor, last.Confidence)
	}
}

func TestProject_ConfidencePenalisesShortHistory(t *testing.T) {
	p := policy.Default().Forecast
	full, err := Project(types.PortfolioSnapshot{}, history(12, 0), 2, p, now)
	require.NoError(t, err)
	short, err := Project(types.PortfolioSnapshot{}, history(3, 0), 2, p, now)
	require.NoError(t, err)

	assert.Equal(t, 90.0, full.MonthlyForecasts[0].Confidence)
	assert.Equal(t, 87.0, full.MonthlyForecasts[1].Confidence)
	assert.Equal(t, 72.0, short.MonthlyForecasts[0].Confidence)
}

func TestProject_MaintenanceInflationAndSeasonality(t *testing.T) {
	p := policy.Default().Forecast
	snap := types.PortfolioSnapshot{AverageMonthlyMaintenanceCost: 100}

	res, err := Project(snap, types.TrendSeries{}, 2, p, now)
	require.NoError(t, err)

	july := res.MonthlyForecasts[0]
	assert.Equal(t, time.July, july.Date.Month())
	assert.Equal(t, 1, july.Date.Day())
	assert.Equal(t, 120.24, july.ProjectedMaintenance)
	assert.Equal(t, -120.24, july.ProjectedNetIncome)

	august := res.MonthlyForecasts[1]
	assert.InDelta(t, 100*1.002*1.002*1.15, august.ProjectedMaintenance, 0.01)
}

func TestProject_RevenueCompoundsByGrowth(t *testing.T) {
	p := policy.Default().Forecast
	snap := types.PortfolioSnapshot{TotalMonthlyRevenue: 1000, OccupancyRate: 100}
	series := types.TrendSeries{RevenueGrowthRate: 1, Records: history(12, 1000).Records}

	res, err := Project(snap, series, 3, p, now)
	require.NoError(t, err)
	assert.Equal(t, 1010.0, res.MonthlyForecasts[0].ProjectedRevenue)
	assert.Equal(t, 1030.3, res.MonthlyForecasts[2].ProjectedRevenue)
	assert.Equal(t, 100.0, res.MonthlyForecasts[2].OccupancyRate)
}

func TestProject_OccupancyAdjustmentThreeUnits(t *testing.T) {
	p := policy.Default().Forecast
	props, leases := threeUnitPortfolio()
	snap := BuildSnapshot(props, leases, nil, now)

	res, err := Project(snap, history(12, 3500), 12, p, now)
	require.NoError(t, err)
	require.Len(t, res.MonthlyForecasts, 12)

	first := res.MonthlyForecasts[0]
	assert.Equal(t, 3500.0, first.ProjectedRevenue)
	assert.InDelta(t, 66.67, first.OccupancyRate, 0.01)

	// Both leases have ended by month 12: 20% assumed not to renew, half of
	// which is lost revenue.
	last := res.MonthlyForecasts[11]
	assert.Equal(t, 3150.0, last.ProjectedRevenue)
	assert.InDelta(t, 60.0, last.OccupancyRate, 0.01)
	assert.GreaterOrEqual(t, last.OccupancyRate, snap.OccupancyRate*p.OccupancyFloor)
}

func TestOccupancyMultiplier_Floor(t *testing.T) {
	p := policy.Default().Forecast
	p.RenewalRate = 0
	p.VacancyImpact = 1
	expired := []types.Lease{{EndDate: now}, {EndDate: now}}

	got := OccupancyMultiplier(expired, now.AddDate(0, 1, 0), p)
	assert.Equal(t, p.OccupancyFloor, got)
	assert.Equal(t, 1.0, OccupancyMultiplier(nil, now, p))
}

func TestSummarize_ROI(t *testing.T) {
	months := []types.ForecastMonth{
		{ProjectedRevenue: 1000, ProjectedMaintenance: 100, ProjectedNetIncome: 900},
		{ProjectedRevenue: 1000, ProjectedMaintenance: 300, ProjectedNetIncome: 700},
	}
	s := Summarize(months, 2000)
	assert.Equal(t, 2000.0, s.TotalProjectedRevenue)
	assert.Equal(t, 400.0, s.TotalProjectedMaintenance)
	assert.Equal(t, 1600.0, s.TotalProjectedNetIncome)
	assert.Equal(t, 800.0, s.AverageMonthlyNetIncome)
	assert.Equal(t, -20.0, s.ProjectedROI)

	assert.Zero(t, Summarize(months, 0).ProjectedROI)
}

func baseForecast(t *testing.T) types.ForecastResult {
	t.Helper()
	props, leases := threeUnitPortfolio()
	tickets := []types.MaintenanceTicket{{ID: "t1", PropertyID: "p1", Cost: 2400, CreatedAt: now.AddDate(0, -2, 0)}}
	snap := BuildSnapshot(props, leases, tickets, now)
	res, err := Project(snap, history(6, 3500), 12, policy.Default().Forecast, now)
	require.NoError(t, err)
	return res
}

func TestSynthesize_Idempotent(t *testing.T) {
	base := baseForecast(t)
	snapshot := append([]types.ForecastMonth(nil), base.MonthlyForecasts...)
	sets := policy.Default().Scenarios

	first := Synthesize(base, sets)
	second := Synthesize(base, sets)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, base.MonthlyForecasts, "base curve must not be modified")
}

func TestSynthesize_OrderAndMultipliers(t *testing.T) {
	base := baseForecast(t)
	scenarios := Synthesize(base, policy.Default().Scenarios)
	require.Len(t, scenarios, 3)
	assert.Equal(t, policy.ScenarioOptimistic, scenarios[0].Name)
	assert.Equal(t, policy.ScenarioConservative, scenarios[1].Name)
	assert.Equal(t, policy.ScenarioPessimistic, scenarios[2].Name)

	opt, _ := Find(scenarios, policy.ScenarioOptimistic)
	pes, _ := Find(scenarios, policy.ScenarioPessimistic)
	b := base.MonthlyForecasts[0]
	assert.InDelta(t, b.ProjectedRevenue*1.2, opt.MonthlyForecasts[0].ProjectedRevenue, 0.01)
	assert.InDelta(t, b.ProjectedMaintenance*0.8, opt.MonthlyForecasts[0].ProjectedMaintenance, 0.01)
	assert.InDelta(t, b.OccupancyRate+5, opt.MonthlyForecasts[0].OccupancyRate, 0.01)
	assert.InDelta(t, b.OccupancyRate-10, pes.MonthlyForecasts[0].OccupancyRate, 0.01)

	assert.GreaterOrEqual(t, opt.Summary.TotalProjectedNetIncome, base.Summary.TotalProjectedNetIncome)
	assert.GreaterOrEqual(t, base.Summary.TotalProjectedNetIncome, pes.Summary.TotalProjectedNetIncome)
	assert.GreaterOrEqual(t, opt.Summary.TotalProjectedRevenue, base.Summary.TotalProjectedRevenue)
	assert.GreaterOrEqual(t, base.Summary.TotalProjectedRevenue, pes.Summary.TotalProjectedRevenue)
}

func TestSynthesize_OccupancyClamped(t *testing.T) {
	base := types.ForecastResult{MonthlyForecasts: []types.ForecastMonth{{OccupancyRate: 98}, {OccupancyRate: 4}}}
	scenarios := Synthesize(base, policy.Default().Scenarios)

	opt, ok := Find(scenarios, policy.ScenarioOptimistic)
	require.True(t, ok)
	assert.Equal(t, 100.0, opt.MonthlyForecasts[0].OccupancyRate)

	pes, ok := Find(scenarios, policy.ScenarioPessimistic)
	require.True(t, ok)
	assert.Equal(t, 0.0, pes.MonthlyForecasts[1].OccupancyRate)

	_, ok = Find(scenarios, "stagflation")
	assert.False(t, ok)
}
