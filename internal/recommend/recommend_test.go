package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/insights/internal/policy"
	"github.com/matthewbaird/insights/internal/risk"
	"github.com/matthewbaird/insights/internal/types"
)

func days(n int) *int { return &n }

func categories(recs []types.Recommendation) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.Category)
	}
	return out
}

func forecastWith(revenue, maintenance float64) types.ForecastResult {
	return types.ForecastResult{Summary: types.ForecastSummary{
		TotalProjectedRevenue:     revenue,
		TotalProjectedMaintenance: maintenance,
		TotalProjectedNetIncome:   revenue - maintenance,
	}}
}

func scenario(name string, net float64) types.Scenario {
	return types.Scenario{Name: name, Summary: types.ForecastSummary{TotalProjectedNetIncome: net}}
}

func TestForForecast_SpreadAndCost(t *testing.T) {
	p := policy.Default().Recommend
	base := forecastWith(100000, 20000) // net 80000, maintenance 20% of revenue
	scenarios := []types.Scenario{
		scenario(policy.ScenarioOptimistic, 100000),
		scenario(policy.ScenarioConservative, 75000),
		scenario(policy.ScenarioPessimistic, 60000),
	}

	recs := ForForecast(base, scenarios, p)
	assert.Equal(t, []string{CategoryGrowth, CategoryRisk, CategoryCost, CategorySeasonal}, categories(recs))
	assert.Equal(t, types.PriorityHigh, recs[1].Priority)
	assert.Equal(t, types.PriorityLow, recs[3].Priority)
}

func TestForForecast_QuietForecastOnlySeasonalTip(t *testing.T) {
	p := policy.Default().Recommend
	base := forecastWith(100000, 10000) // net 90000
	scenarios := []types.Scenario{
		scenario(policy.ScenarioOptimistic, 95000),
		scenario(policy.ScenarioPessimistic, 86000),
	}
	recs := ForForecast(base, scenarios, p)
	assert.Equal(t, []string{CategorySeasonal}, categories(recs))

	recs = ForForecast(forecastWith(0, 0), nil, p)
	assert.Equal(t, []string{CategorySeasonal}, categories(recs))
}

func TestForLease_Interventions(t *testing.T) {
	p := policy.Default().Recommend
	factors := []types.RiskFactor{
		{Name: risk.FactorPaymentHistory, RiskLevel: types.RiskHigh, Score: 20},
		{Name: risk.FactorMaintenanceIssues, RiskLevel: types.RiskMedium, Score: 50},
		{Name: risk.FactorRentCompetitiveness, RiskLevel: types.RiskMedium, Score: 50, Metrics: map[string]float64{"percent_vs_market": 14}},
	}
	pred := types.TurnoverPrediction{LeaseID: "lease-9", RiskLevel: types.RiskHigh}

	recs := ForLease(factors, pred, days(45), p)
	assert.Equal(t, []string{CategoryPayment, CategoryMaintenance, CategoryPricing, CategoryRenewal, CategoryRetention}, categories(recs))
	assert.Equal(t, types.PriorityHigh, recs[0].Priority)
	assert.Equal(t, types.PriorityMedium, recs[1].Priority)
	assert.Equal(t, types.PriorityHigh, recs[3].Priority, "renewal inside the critical window")
	for _, r := range recs {
		assert.Equal(t, "lease-9", r.LeaseID)
		assert.NotEmpty(t, r.EstimatedImpact)
		assert.NotEmpty(t, r.Timeline)
	}
}

func TestForLease_HealthyLease(t *testing.T) {
	p := policy.Default().Recommend
	factors := []types.RiskFactor{
		{Name: risk.FactorPaymentHistory, RiskLevel: types.RiskLow, Score: 100},
		{Name: risk.FactorMaintenanceIssues, RiskLevel: types.RiskLowMedium, Score: 75},
		{Name: risk.FactorRentCompetitiveness, RiskLevel: types.RiskLowMedium, Score: 75, Metrics: map[string]float64{"percent_vs_market": 7}},
	}
	assert.Empty(t, ForLease(factors, types.TurnoverPrediction{RiskLevel: types.RiskLow}, days(200), p))

	recs := ForLease(factors, types.TurnoverPrediction{RiskLevel: types.RiskLow}, days(80), p)
	require.Len(t, recs, 1)
	assert.Equal(t, CategoryRenewal, recs[0].Category)
	assert.Equal(t, types.PriorityMedium, recs[0].Priority)
}

func TestForPortfolio(t *testing.T) {
	p := policy.Default().Recommend
	entries := []types.LeaseRiskEntry{
		{LeaseID: "a", RiskLevel: types.RiskHigh, DaysUntilExpiry: days(150)},
		{LeaseID: "b", RiskLevel: types.RiskHigh, DaysUntilExpiry: days(30)},
		{LeaseID: "c", RiskLevel: types.RiskLow, DaysUntilExpiry: days(20)},
		{LeaseID: "d", RiskLevel: types.RiskUnknown, Error: true},
	}
	recs := ForPortfolio(entries, p)
	require.Len(t, recs, 3)

	assert.Equal(t, types.PriorityCritical, recs[0].Priority)
	assert.Equal(t, "b", recs[0].LeaseID)
	assert.Equal(t, types.PriorityHigh, recs[1].Priority)
	assert.Equal(t, "a", recs[1].LeaseID)
	assert.Equal(t, types.PriorityMedium, recs[2].Priority)
	assert.Equal(t, CategoryPortfolio, recs[2].Category)
}

func TestForPortfolio_NoSystemicFlagBelowShare(t *testing.T) {
	p := policy.Default().Recommend
	entries := []types.LeaseRiskEntry{
		{LeaseID: "a", RiskLevel: types.RiskHigh, DaysUntilExpiry: days(200)},
		{LeaseID: "b", RiskLevel: types.RiskLow},
		{LeaseID: "c", RiskLevel: types.RiskLow},
		{LeaseID: "d", RiskLevel: types.RiskMedium},
	}
	recs := ForPortfolio(entries, p)
	require.Len(t, recs, 1)
	assert.Equal(t, types.PriorityHigh, recs[0].Priority)

	assert.Empty(t, ForPortfolio(nil, p))
}

func TestForLease_ExpiryEdges(t *testing.T) {
	p := policy.Default().Recommend
	pred := types.TurnoverPrediction{LeaseID: "lease-3", RiskLevel: types.RiskLow}

	assert.Empty(t, ForLease(nil, pred, nil, p), "open-ended lease has nothing to renew")

	recs := ForLease(nil, pred, days(-5), p)
	require.Len(t, recs, 1)
	assert.Equal(t, CategoryRenewal, recs[0].Category)
	assert.Equal(t, types.PriorityHigh, recs[0].Priority)
	assert.Equal(t, "Resolve the holdover tenancy", recs[0].Title)
	assert.Contains(t, recs[0].Description, "ended 5 days ago")
	assert.NotContains(t, recs[0].Description, "-5")
}

func TestForPortfolio_ExpiryEdges(t *testing.T) {
	p := policy.Default().Recommend
	entries := []types.LeaseRiskEntry{
		{LeaseID: "open", RiskLevel: types.RiskHigh},
		{LeaseID: "holdover", RiskLevel: types.RiskHigh, DaysUntilExpiry: days(-3)},
		{LeaseID: "b", RiskLevel: types.RiskLow},
		{LeaseID: "c", RiskLevel: types.RiskLow},
		{LeaseID: "d", RiskLevel: types.RiskLow},
	}
	recs := ForPortfolio(entries, p)
	require.Len(t, recs, 2)

	assert.Equal(t, "holdover", recs[0].LeaseID)
	assert.Equal(t, types.PriorityCritical, recs[0].Priority)
	assert.Contains(t, recs[0].Description, "ended 3 days ago")

	assert.Equal(t, "open", recs[1].LeaseID)
	assert.Equal(t, types.PriorityHigh, recs[1].Priority)
	assert.Contains(t, recs[1].Description, "no fixed end date")
}
