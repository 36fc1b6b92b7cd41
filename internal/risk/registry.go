// Package risk provides the seven turnover risk factor evaluators and the
// registry that runs them. Every evaluator is a pure function of a
// LeaseContext; missing optional data degrades to an "unknown" factor with a
// score of 50 rather than an error.
package risk

import (
	"math"
	"time"

	"github.com/matthewbaird/insights/internal/types"
)

// Factor names, in evaluation order.
const (
	FactorPaymentHistory       = "payment_history"
	FactorLeaseTerm            = "lease_term"
	FactorMaintenanceIssues    = "maintenance_issues"
	FactorRentCompetitiveness  = "rent_competitiveness"
	FactorTenantProfile        = "tenant_profile"
	FactorPropertyDesirability = "property_desirability"
	FactorHistoricalTurnover   = "historical_turnover"
)

// UnknownScore is assigned when an evaluator has nothing to go on.
const UnknownScore = 50

// LeaseContext is everything the evaluators may look at for one lease.
type LeaseContext struct {
	Lease       types.Lease
	Tenant      *types.Tenant
	Property    *types.Property
	Payments    []types.Payment
	Tickets     []types.MaintenanceTicket
	Comparables []types.Property
	History     []types.Lease // past leases on the same property
	Now         time.Time
}

// DaysUntilExpiry returns the whole days from Now until the lease end,
// rounding up partial days. Expired leases yield negative values and an
// open-ended lease yields nil.
func (c LeaseContext) DaysUntilExpiry() *int {
	return ExpiryDays(c.Lease, c.Now)
}

// ExpiryDays is DaysUntil for a lease, or nil when it has no end date.
func ExpiryDays(l types.Lease, now time.Time) *int {
	if l.EndDate.IsZero() {
		return nil
	}
	days := DaysUntil(l.EndDate, now)
	return &days
}

// DaysUntil returns the whole days from now until end, rounding up.
func DaysUntil(end, now time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}

// Evaluator scores one aspect of turnover risk.
type Evaluator func(LeaseContext) types.RiskFactor

// Registration binds a factor name to its evaluator.
type Registration struct {
	Name        string
	Description string
	Evaluate    Evaluator
}

// Registry lists all factors in evaluation order.
var Registry = []Registration{
	{
		Name:        FactorPaymentHistory,
		Description: "Late and missed payments over the trailing 12 months",
		Evaluate: func(c LeaseContext) types.RiskFactor {
			return PaymentHistory(c.Payments, c.Now)
		},
	},
	{
		Name:        FactorLeaseTerm,
		Description: "Proximity of the lease end date and total lease length",
		Evaluate: func(c LeaseContext) types.RiskFactor {
			return LeaseTerm(c.Lease, c.Now)
		},
	},
	{
		Name:        FactorMaintenanceIssues,
		Description: "Maintenance ticket volume, open tickets and urgency over 12 months",
		Evaluate: func(c LeaseContext) types.RiskFactor {
			return MaintenanceIssues(c.Tickets, c.Now)
		},
	},
	{
		Name:        FactorRentCompetitiveness,
		Description: "Current rent against comparable active properties",
		Evaluate: func(c LeaseContext) types.RiskFactor {
			return RentCompetitiveness(c.Lease.MonthlyRent, c.Comparables)
		},
	},
	{
		Name:        FactorTenantProfile,
		Description: "Completeness of the tenant profile",
		Evaluate: func(c LeaseContext) types.RiskFactor {
			return TenantProfile(c.Tenant)
		},
	},
	{
		Name:        FactorPropertyDesirability,
		Description: "Property attributes that correlate with turnover",
		Evaluate: func(c LeaseContext) types.RiskFactor {
			return PropertyDesirability(c.Property)
		},
	},
	{
		Name:        FactorHistoricalTurnover,
		Description: "Lease durations and early terminations on the property",
		Evaluate: func(c LeaseContext) types.RiskFactor {
			return HistoricalTurnover(c.History)
		},
	},
}

// EvaluateAll runs every registered evaluator and normalises the results so
// that scores lie in [0, 100] and levels are one of the defined values.
func EvaluateAll(c LeaseContext) []types.RiskFactor {
	out := make([]types.RiskFactor, 0, len(Registry))
	for _, reg := range Registry {
		f := reg.Evaluate(c)
		if f.Name == "" {
			f.Name = reg.Name
		}
		out = append(out, normalize(f))
	}
	return out
}

// Find returns the factor with the given name.
func Find(factors []types.RiskFactor, name string) (types.RiskFactor, bool) {
	for _, f := range factors {
		if f.Name == name {
			return f, true
		}
	}
	return types.RiskFactor{}, false
}

// AverageScore returns the mean factor score, or UnknownScore for an empty set.
func AverageScore(factors []types.RiskFactor) float64 {
	if len(factors) == 0 {
		return UnknownScore
	}
	var sum float64
	for _, f := range factors {
		sum += f.Score
	}
	return sum / float64(len(factors))
}

func normalize(f types.RiskFactor) types.RiskFactor {
	f.Score = clamp(f.Score, 0, 100)
	if !f.RiskLevel.Valid() {
		f.RiskLevel = types.RiskUnknown
	}
	return f
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
