// Package recommend maps forecasts and turnover predictions to prioritized
// action items. All functions are pure.
package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/matthewbaird/insights/internal/forecast"
	"github.com/matthewbaird/insights/internal/policy"
	"github.com/matthewbaird/insights/internal/risk"
	"github.com/matthewbaird/insights/internal/types"
)

// Recommendation categories.
const (
	CategoryGrowth      = "growth_opportunity"
	CategoryRisk        = "risk_mitigation"
	CategoryCost        = "cost_management"
	CategorySeasonal    = "seasonal_planning"
	CategoryPayment     = "payment"
	CategoryMaintenance = "maintenance"
	CategoryPricing     = "pricing"
	CategoryRenewal     = "renewal"
	CategoryRetention   = "retention"
	CategoryPortfolio   = "portfolio"
)

// ForForecast flags upside and downside spread between the scenarios and the
// base case, a high maintenance share of revenue, and always adds a seasonal
// planning tip. Missing scenarios skip the spread checks.
func ForForecast(base types.ForecastResult, scenarios []types.Scenario, p policy.RecommendPolicy) []types.Recommendation {
	var out []types.Recommendation
	baseNet := base.Summary.TotalProjectedNetIncome
	scale := math.Abs(baseNet)

	if opt, ok := forecast.Find(scenarios, policy.ScenarioOptimistic); ok {
		if delta := opt.Summary.TotalProjectedNetIncome - baseNet; delta > p.UpsideRatio*scale {
			out = append(out, types.Recommendation{
				Category:        CategoryGrowth,
				Priority:        types.PriorityMedium,
				Title:           "Significant upside potential",
				Description:     "The optimistic scenario clears the base case by a wide margin. Review rents at renewal and reduce vacancy days to capture it.",
				EstimatedImpact: fmt.Sprintf("up to %.2f additional net income over the forecast period", delta),
				Timeline:        "next 3-6 months",
			})
		}
	}
	if pes, ok := forecast.Find(scenarios, policy.ScenarioPessimistic); ok {
		if delta := baseNet - pes.Summary.TotalProjectedNetIncome; delta > p.DownsideRatio*scale {
			out = append(out, types.Recommendation{
				Category:        CategoryRisk,
				Priority:        types.PriorityHigh,
				Title:           "Material downside exposure",
				Description:     "A cost overrun with lower occupancy would cut net income sharply. Build a maintenance reserve and lock in renewals early.",
				EstimatedImpact: fmt.Sprintf("protects up to %.2f of net income", delta),
				Timeline:        "immediate",
			})
		}
	}

	revenue := base.Summary.TotalProjectedRevenue
	if revenue > 0 {
		if ratio := base.Summary.TotalProjectedMaintenance / revenue; ratio > p.MaintenanceRevenueRatio {
			out = append(out, types.Recommendation{
				Category:        CategoryCost,
				Priority:        types.PriorityMedium,
				Title:           "Maintenance costs are high relative to revenue",
				Description:     fmt.Sprintf("Maintenance is projected at %.1f%% of revenue. Consider preventive maintenance contracts and vendor renegotiation.", ratio*100),
				EstimatedImpact: "5-15% reduction in maintenance spend",
				Timeline:        "next quarter",
			})
		}
	}

	out = append(out, types.Recommendation{
		Category:        CategorySeasonal,
		Priority:        types.PriorityLow,
		Title:           "Plan for seasonal maintenance peaks",
		Description:     "Heating and cooling systems drive winter and summer spikes. Schedule HVAC servicing in the shoulder months.",
		EstimatedImpact: "smoother monthly cash flow",
		Timeline:        "ongoing",
	})
	return out
}

// ForLease maps a lease's risk factors and prediction to interventions. An
// open-ended lease (nil daysUntilExpiry) gets no renewal item; one already
// past its end date gets a holdover item instead.
func ForLease(factors []types.RiskFactor, pred types.TurnoverPrediction, daysUntilExpiry *int, p policy.RecommendPolicy) []types.Recommendation {
	var out []types.Recommendation
	add := func(r types.Recommendation) {
		r.LeaseID = pred.LeaseID
		out = append(out, r)
	}

	if f, ok := risk.Find(factors, risk.FactorPaymentHistory); ok && elevated(f.RiskLevel) {
		add(types.Recommendation{
			Category:        CategoryPayment,
			Priority:        priorityFor(f.RiskLevel),
			Title:           "Discuss a payment plan",
			Description:     "Recent late or missed payments suggest financial strain. Offer a structured payment plan or autopay enrollment.",
			EstimatedImpact: "improves collections and reduces non-renewal risk",
			Timeline:        "within 2 weeks",
		})
	}
	if f, ok := risk.Find(factors, risk.FactorMaintenanceIssues); ok && elevated(f.RiskLevel) {
		add(types.Recommendation{
			Category:        CategoryMaintenance,
			Priority:        priorityFor(f.RiskLevel),
			Title:           "Expedite open maintenance tickets",
			Description:     "Unresolved or urgent maintenance is a leading cause of tenant dissatisfaction. Prioritize and close open tickets.",
			EstimatedImpact: "higher tenant satisfaction",
			Timeline:        "within 1 week",
		})
	}
	if f, ok := risk.Find(factors, risk.FactorRentCompetitiveness); ok {
		if diff, has := f.Metrics["percent_vs_market"]; has && diff > p.RentOverMarketPercent {
			add(types.Recommendation{
				Category:        CategoryPricing,
				Priority:        types.PriorityMedium,
				Title:           "Consider a rent adjustment",
				Description:     fmt.Sprintf("Rent is %.1f%% above comparable properties. A modest adjustment at renewal may retain the tenant.", diff),
				EstimatedImpact: "lower vacancy risk at renewal",
				Timeline:        "before renewal",
			})
		}
	}
	switch {
	case daysUntilExpiry == nil:
	case *daysUntilExpiry < 0:
		add(types.Recommendation{
			Category:        CategoryRenewal,
			Priority:        types.PriorityHigh,
			Title:           "Resolve the holdover tenancy",
			Description:     fmt.Sprintf("The lease ended %d days ago and is still active. Sign a renewal or agree move-out terms.", -*daysUntilExpiry),
			EstimatedImpact: "restores an enforceable lease",
			Timeline:        "this week",
		})
	case *daysUntilExpiry <= p.RenewalWindowDays:
		priority := types.PriorityMedium
		if *daysUntilExpiry <= p.CriticalWindowDays {
			priority = types.PriorityHigh
		}
		add(types.Recommendation{
			Category:        CategoryRenewal,
			Priority:        priority,
			Title:           "Start renewal outreach",
			Description:     fmt.Sprintf("The lease ends in %d days. Contact the tenant now with renewal terms.", *daysUntilExpiry),
			EstimatedImpact: "avoids 1-2 months of vacancy",
			Timeline:        "this week",
		})
	}
	if pred.RiskLevel == types.RiskHigh {
		add(types.Recommendation{
			Category:        CategoryRetention,
			Priority:        types.PriorityHigh,
			Title:           "Run a tenant satisfaction check-in",
			Description:     "Overall turnover risk is high. A short survey or call can surface fixable complaints before the tenant decides to leave.",
			EstimatedImpact: "retention of a high-risk tenancy",
			Timeline:        "within 2 weeks",
		})
	}
	return out
}

// ForPortfolio raises one action per high-risk lease, critical when it
// expires within the critical window, and a systemic review when the share
// of high-risk leases exceeds the policy threshold. Results are ordered by
// priority, most urgent first.
func ForPortfolio(entries []types.LeaseRiskEntry, p policy.RecommendPolicy) []types.Recommendation {
	var out []types.Recommendation
	var high int
	for _, e := range entries {
		if e.Error || e.RiskLevel != types.RiskHigh {
			continue
		}
		high++
		if e.DaysUntilExpiry != nil && *e.DaysUntilExpiry <= p.CriticalWindowDays {
			out = append(out, types.Recommendation{
				Category:        CategoryRetention,
				Priority:        types.PriorityCritical,
				Title:           "High-risk lease expiring soon",
				Description:     fmt.Sprintf("Lease %s is high risk and %s. Contact the tenant immediately.", e.LeaseID, endPhrase(*e.DaysUntilExpiry)),
				EstimatedImpact: "avoids an imminent vacancy",
				Timeline:        "immediate",
				LeaseID:         e.LeaseID,
			})
			continue
		}
		out = append(out, types.Recommendation{
			Category:        CategoryRetention,
			Priority:        types.PriorityHigh,
			Title:           "High-risk lease needs a retention plan",
			Description:     fmt.Sprintf("Lease %s is high risk with %s. Address its risk factors before renewal.", e.LeaseID, remainingPhrase(e.DaysUntilExpiry)),
			EstimatedImpact: "improves renewal odds",
			Timeline:        "within 30 days",
			LeaseID:         e.LeaseID,
		})
	}

	if len(entries) > 0 {
		if share := float64(high) / float64(len(entries)); share > p.SystemicHighRiskShare {
			out = append(out, types.Recommendation{
				Category:        CategoryPortfolio,
				Priority:        types.PriorityMedium,
				Title:           "Review portfolio-wide retention",
				Description:     fmt.Sprintf("%.0f%% of leases are high risk. Look for shared causes such as pricing, maintenance response, or management practices.", share*100),
				EstimatedImpact: "reduces systemic turnover",
				Timeline:        "next quarter",
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

func endPhrase(days int) string {
	if days < 0 {
		return fmt.Sprintf("ended %d days ago", -days)
	}
	return fmt.Sprintf("ends in %d days", days)
}

func remainingPhrase(days *int) string {
	if days == nil {
		return "no fixed end date"
	}
	return fmt.Sprintf("%d days remaining", *days)
}

func elevated(l types.RiskLevel) bool {
	return l == types.RiskHigh || l == types.RiskMedium
}

func priorityFor(l types.RiskLevel) types.Priority {
	if l == types.RiskHigh {
		return types.PriorityHigh
	}
	return types.PriorityMedium
}
