// Package types provides the Go structs shared by the analytics engine: the
// read-only records supplied by the portfolio query collaborators and the
// per-request structures the engine derives from them. Nothing here is
// persisted by the engine.
package types

import "time"

// RiskLevel is the qualitative level attached to a risk factor or prediction.
type RiskLevel string

const (
	RiskLow       RiskLevel = "low"
	RiskLowMedium RiskLevel = "low-medium"
	RiskMedium    RiskLevel = "medium"
	RiskHigh      RiskLevel = "high"
	RiskUnknown   RiskLevel = "unknown"
)

// Valid reports whether l is one of the five defined levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskLowMedium, RiskMedium, RiskHigh, RiskUnknown:
		return true
	}
	return false
}

// Confidence is the qualitative confidence of a turnover prediction.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Timeframe is the expected window in which turnover would happen.
type Timeframe string

const (
	TimeframeImmediate Timeframe = "immediate" // within 30 days
	TimeframeShort     Timeframe = "short"     // 1-3 months
	TimeframeMedium    Timeframe = "medium"    // 3-6 months
	TimeframeLong      Timeframe = "long"      // beyond 6 months
)

// Priority orders recommendations.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank maps a priority to a numeric order (lower = more urgent).
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	default:
		return 5
	}
}

// ─── Portfolio state ───────────────────────────────────────────────────────────

// PropertyState is the per-property slice of a PortfolioSnapshot.
type PropertyState struct {
	Property       Property            `json:"property"`
	CurrentRent    float64             `json:"current_rent"`
	HasActiveLease bool                `json:"has_active_lease"`
	ActiveLease    *Lease              `json:"active_lease,omitempty"`
	Tickets        []MaintenanceTicket `json:"tickets,omitempty"` // last 24 months
	Leases         []Lease             `json:"leases,omitempty"`
}

// PortfolioSnapshot is the current state of a landlord's properties, built
// fresh for every request.
type PortfolioSnapshot struct {
	Properties                    []PropertyState `json:"properties"`
	TotalMonthlyRevenue           float64         `json:"total_monthly_revenue"`
	OccupancyRate                 float64         `json:"occupancy_rate"` // 0-100
	AverageMonthlyMaintenanceCost float64         `json:"average_monthly_maintenance_cost"`
	PropertyCount                 int             `json:"property_count"`
}

// ActiveLeases returns the active lease of every occupied property.
func (s PortfolioSnapshot) ActiveLeases() []Lease {
	var out []Lease
	for _, p := range s.Properties {
		if p.ActiveLease != nil {
			out = append(out, *p.ActiveLease)
		}
	}
	return out
}

// ─── Historical trends ─────────────────────────────────────────────────────────

// MonthlyRecord is one month of aggregated history. Month is "YYYY-MM".
type MonthlyRecord struct {
	Month              string  `json:"month"`
	Revenue            float64 `json:"revenue"`
	MaintenanceCost    float64 `json:"maintenance_cost"`
	NetIncome          float64 `json:"net_income"`
	PaymentSuccessRate float64 `json:"payment_success_rate"` // 0-100
}

// TrendSeries is the ordered monthly history plus derived summary figures.
// Records are strictly increasing by month with no duplicates.
type TrendSeries struct {
	Records                   []MonthlyRecord `json:"records"`
	AverageMonthlyRevenue     float64         `json:"average_monthly_revenue"`
	AverageMonthlyMaintenance float64         `json:"average_monthly_maintenance"`
	RevenueGrowthRate         float64         `json:"revenue_growth_rate"` // percent per month
}

// ─── Forecasts ─────────────────────────────────────────────────────────────────

// ForecastMonth is one projected month. Confidence never increases with
// MonthIndex.
type ForecastMonth struct {
	MonthIndex           int       `json:"month_index"`
	Date                 time.Time `json:"date"`
	ProjectedRevenue     float64   `json:"projected_revenue"`
	ProjectedMaintenance float64   `json:"projected_maintenance"`
	ProjectedNetIncome   float64   `json:"projected_net_income"`
	OccupancyRate        float64   `json:"occupancy_rate"`
	Confidence           float64   `json:"confidence"`
}

// ForecastSummary totals a forecast curve.
type ForecastSummary struct {
	TotalProjectedRevenue     float64 `json:"total_projected_revenue"`
	TotalProjectedMaintenance float64 `json:"total_projected_maintenance"`
	TotalProjectedNetIncome   float64 `json:"total_projected_net_income"`
	AverageMonthlyNetIncome   float64 `json:"average_monthly_net_income"`
	ProjectedROI              float64 `json:"projected_roi"`
	BaselineAnnualRevenue     float64 `json:"baseline_annual_revenue"`
}

// Scenario is a sensitivity band derived from a base forecast.
type Scenario struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	MonthlyForecasts []ForecastMonth `json:"monthly_forecasts"`
	Summary          ForecastSummary `json:"summary"`
}

// ForecastResult is the output of a portfolio or property forecast.
type ForecastResult struct {
	Scope            string           `json:"scope"` // "portfolio" or "property"
	ScopeID          string           `json:"scope_id"`
	HorizonMonths    int              `json:"horizon_months"`
	MonthlyForecasts []ForecastMonth  `json:"monthly_forecasts"`
	Summary          ForecastSummary  `json:"summary"`
	History          *TrendSeries     `json:"history,omitempty"`
	Scenarios        []Scenario       `json:"scenarios,omitempty"`
	MarketFactors    *MarketInsights  `json:"market_factors,omitempty"`
	Recommendations  []Recommendation `json:"recommendations"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// ─── Turnover risk ─────────────────────────────────────────────────────────────

// RiskFactor is the output of one evaluator. Score is within [0, 100].
type RiskFactor struct {
	Name      string             `json:"name"`
	RiskLevel RiskLevel          `json:"risk_level"`
	Score     float64            `json:"score"`
	Details   string             `json:"details"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// TurnoverPrediction is the combined turnover outlook for one lease.
// Probability is within [0, 100]. DaysUntilExpiry is nil for an open-ended
// lease.
type TurnoverPrediction struct {
	LeaseID         string           `json:"lease_id"`
	RiskLevel       RiskLevel        `json:"risk_level"`
	Confidence      Confidence       `json:"confidence"`
	Probability     float64          `json:"probability"`
	Timeframe       Timeframe        `json:"timeframe"`
	Reasoning       string           `json:"reasoning"`
	Source          string           `json:"source"` // "reasoning" or "fallback"
	DaysUntilExpiry *int             `json:"days_until_expiry"`
	Factors         []RiskFactor     `json:"factors,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Recommendation is a prioritized action item.
type Recommendation struct {
	Category        string   `json:"category"`
	Priority        Priority `json:"priority"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	EstimatedImpact string   `json:"estimated_impact"`
	Timeline        string   `json:"timeline"`
	LeaseID         string   `json:"lease_id,omitempty"`
}

// LeaseRiskEntry is one row of a portfolio turnover breakdown. Error marks a
// lease whose assessment could not be completed.
type LeaseRiskEntry struct {
	LeaseID         string    `json:"lease_id"`
	PropertyID      string    `json:"property_id"`
	TenantID        string    `json:"tenant_id,omitempty"`
	DaysUntilExpiry *int      `json:"days_until_expiry"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Probability     float64   `json:"probability"`
	Timeframe       Timeframe `json:"timeframe,omitempty"`
	Source          string    `json:"source,omitempty"`
	Error           bool      `json:"error,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// RiskBreakdown counts leases per risk level.
type RiskBreakdown struct {
	High    int `json:"high"`
	Medium  int `json:"medium"`
	Low     int `json:"low"`
	Unknown int `json:"unknown"`
}

// PortfolioTurnoverAnalysis is the portfolio-wide turnover result.
type PortfolioTurnoverAnalysis struct {
	AnalysisID      string           `json:"analysis_id"`
	LandlordID      string           `json:"landlord_id"`
	TotalLeases     int              `json:"total_leases"`
	Breakdown       RiskBreakdown    `json:"breakdown"`
	Leases          []LeaseRiskEntry `json:"leases"`
	PriorityActions []Recommendation `json:"priority_actions"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// ─── Market ────────────────────────────────────────────────────────────────────

// PropertyMarketInsight compares one property's rent to its comparables.
type PropertyMarketInsight struct {
	PropertyID        string    `json:"property_id"`
	CurrentRent       float64   `json:"current_rent"`
	MarketAverageRent float64   `json:"market_average_rent"`
	ComparableCount   int       `json:"comparable_count"`
	PercentVsMarket   float64   `json:"percent_vs_market"`
	Position          string    `json:"position"` // "above", "at", "below", "unknown"
	RiskLevel         RiskLevel `json:"risk_level"`
}

// MarketInsights aggregates comparable-rent positions across a portfolio.
type MarketInsights struct {
	Properties             []PropertyMarketInsight `json:"properties"`
	AveragePercentVsMarket float64                 `json:"average_percent_vs_market"`
	PropertiesAboveMarket  int                     `json:"properties_above_market"`
	PropertiesBelowMarket  int                     `json:"properties_below_market"`
	PropertiesWithoutComps int                     `json:"properties_without_comps"`
}
