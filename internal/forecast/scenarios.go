package forecast

import (
	"github.com/matthewbaird/insights/internal/policy"
	"github.com/matthewbaird/insights/internal/types"
)

// Synthesize derives one scenario per multiplier set from the base curve,
// in the order given. Revenue and maintenance are scaled, net income and ROI
// recomputed, and occupancy shifted by the set's delta and clamped to
// [0, 100]. The base is not modified.
func Synthesize(base types.ForecastResult, sets []policy.ScenarioMultipliers) []types.Scenario {
	out := make([]types.Scenario, 0, len(sets))
	for _, set := range sets {
		months := make([]types.ForecastMonth, len(base.MonthlyForecasts))
		for i, m := range base.MonthlyForecasts {
			revenue := types.Round2(m.ProjectedRevenue * set.RevenueFactor)
			maintenance := types.Round2(m.ProjectedMaintenance * set.MaintenanceFactor)
			m.ProjectedRevenue = revenue
			m.ProjectedMaintenance = maintenance
			m.ProjectedNetIncome = types.Round2(revenue - maintenance)
			m.OccupancyRate = types.Round2(clamp(m.OccupancyRate+set.OccupancyDeltaPts, 0, 100))
			months[i] = m
		}
		out = append(out, types.Scenario{
			Name:             set.Name,
			Description:      set.Description,
			MonthlyForecasts: months,
			Summary:          Summarize(months, base.Summary.BaselineAnnualRevenue),
		})
	}
	return out
}

// Find returns the scenario with the given name.
func Find(scenarios []types.Scenario, name string) (types.Scenario, bool) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return types.Scenario{}, false
}
