// Package policy holds the tunable constants of the analytics engine:
// forecast inflation and seasonality, occupancy assumptions, confidence decay,
// scenario multiplier sets, fallback risk bands, and recommendation thresholds.
// Defaults reproduce the engine's reference behaviour; any subset can be
// overridden from a CUE or YAML file (see Load).
package policy

import (
	"errors"
	"fmt"
)

// Policy is the full set of tunables.
type Policy struct {
	Forecast   ForecastPolicy        `json:"forecast" yaml:"forecast"`
	Scenarios  []ScenarioMultipliers `json:"scenarios" yaml:"scenarios"`
	Assessment AssessmentPolicy      `json:"assessment" yaml:"assessment"`
	Recommend  RecommendPolicy       `json:"recommend" yaml:"recommend"`
}

// ForecastPolicy drives the base forecast projector.
type ForecastPolicy struct {
	// MonthlyMaintenanceInflation compounds maintenance cost each month
	// (0.002 ≈ 2.4%/year).
	MonthlyMaintenanceInflation float64 `json:"monthly_maintenance_inflation" yaml:"monthly_maintenance_inflation"`
	// Seasonality has one maintenance multiplier per calendar month, January first.
	Seasonality []float64 `json:"seasonality" yaml:"seasonality"`
	// RenewalRate is the share of expiring leases assumed to renew.
	RenewalRate float64 `json:"renewal_rate" yaml:"renewal_rate"`
	// VacancyImpact scales the non-renewed share into lost revenue. With the
	// default renewal rate, 100% of leases expiring costs 10% of revenue.
	VacancyImpact  float64 `json:"vacancy_impact" yaml:"vacancy_impact"`
	OccupancyFloor float64 `json:"occupancy_floor" yaml:"occupancy_floor"`
	OccupancyCap   float64 `json:"occupancy_cap" yaml:"occupancy_cap"`

	ConfidenceStart          float64 `json:"confidence_start" yaml:"confidence_start"`
	ConfidenceDecayPerMonth  float64 `json:"confidence_decay_per_month" yaml:"confidence_decay_per_month"`
	MissingHistoryPenalty    float64 `json:"missing_history_penalty" yaml:"missing_history_penalty"`
	HistoryBaselineMonths    int     `json:"history_baseline_months" yaml:"history_baseline_months"`
	ConfidenceFloor          float64 `json:"confidence_floor" yaml:"confidence_floor"`
	ConfidenceCap            float64 `json:"confidence_cap" yaml:"confidence_cap"`
	MaxHorizonMonths         int     `json:"max_horizon_months" yaml:"max_horizon_months"`
	DefaultPortfolioHorizon  int     `json:"default_portfolio_horizon" yaml:"default_portfolio_horizon"`
	DefaultPropertyHorizon   int     `json:"default_property_horizon" yaml:"default_property_horizon"`
	HistoryLookbackMonths    int     `json:"history_lookback_months" yaml:"history_lookback_months"`
	MaxHistoryLookbackMonths int     `json:"max_history_lookback_months" yaml:"max_history_lookback_months"`
}

// ScenarioMultipliers derives one scenario from the base curve.
type ScenarioMultipliers struct {
	Name              string  `json:"name" yaml:"name"`
	Description       string  `json:"description" yaml:"description"`
	RevenueFactor     float64 `json:"revenue_factor" yaml:"revenue_factor"`
	MaintenanceFactor float64 `json:"maintenance_factor" yaml:"maintenance_factor"`
	OccupancyDeltaPts float64 `json:"occupancy_delta_pts" yaml:"occupancy_delta_pts"`
}

// AssessmentPolicy drives the deterministic fallback of the composite
// risk assessor. Bands are checked in order against the average factor score.
type AssessmentPolicy struct {
	HighRiskBelow     float64 `json:"high_risk_below" yaml:"high_risk_below"`
	MediumRiskBelow   float64 `json:"medium_risk_below" yaml:"medium_risk_below"`
	HighProbability   float64 `json:"high_probability" yaml:"high_probability"`
	MediumProbability float64 `json:"medium_probability" yaml:"medium_probability"`
	LowProbability    float64 `json:"low_probability" yaml:"low_probability"`
	FallbackReasoning string  `json:"fallback_reasoning" yaml:"fallback_reasoning"`
}

// RecommendPolicy holds the thresholds of the recommendation engine.
type RecommendPolicy struct {
	// UpsideRatio and DownsideRatio are fractions of the base total net income.
	UpsideRatio             float64 `json:"upside_ratio" yaml:"upside_ratio"`
	DownsideRatio           float64 `json:"downside_ratio" yaml:"downside_ratio"`
	MaintenanceRevenueRatio float64 `json:"maintenance_revenue_ratio" yaml:"maintenance_revenue_ratio"`
	RentOverMarketPercent   float64 `json:"rent_over_market_percent" yaml:"rent_over_market_percent"`
	RenewalWindowDays       int     `json:"renewal_window_days" yaml:"renewal_window_days"`
	CriticalWindowDays      int     `json:"critical_window_days" yaml:"critical_window_days"`
	SystemicHighRiskShare   float64 `json:"systemic_high_risk_share" yaml:"systemic_high_risk_share"`
}

// Scenario names of the default multiplier set.
const (
	ScenarioOptimistic   = "optimistic"
	ScenarioConservative = "conservative"
	ScenarioPessimistic  = "pessimistic"
)

// Default returns the reference policy.
func Default() Policy {
	return Policy{
		Forecast: ForecastPolicy{
			MonthlyMaintenanceInflation: 0.002,
			// Heating and cooling months run hot; spring and autumn run cool.
			Seasonality:              []float64{1.2, 1.15, 1.0, 0.9, 0.95, 1.1, 1.2, 1.15, 0.95, 0.9, 1.0, 1.1},
			RenewalRate:              0.80,
			VacancyImpact:            0.50,
			OccupancyFloor:           0.70,
			OccupancyCap:             1.0,
			ConfidenceStart:          90,
			ConfidenceDecayPerMonth:  3,
			MissingHistoryPenalty:    2,
			HistoryBaselineMonths:    12,
			ConfidenceFloor:          20,
			ConfidenceCap:            95,
			MaxHorizonMonths:         36,
			DefaultPortfolioHorizon:  12,
			DefaultPropertyHorizon:   24,
			HistoryLookbackMonths:    12,
			MaxHistoryLookbackMonths: 36,
		},
		Scenarios: []ScenarioMultipliers{
			{
				Name:              ScenarioOptimistic,
				Description:       "Strong demand: rents rise faster and maintenance runs below trend.",
				RevenueFactor:     1.20,
				MaintenanceFactor: 0.80,
				OccupancyDeltaPts: 5,
			},
			{
				Name:              ScenarioConservative,
				Description:       "Modest rent growth with maintenance running above trend.",
				RevenueFactor:     1.05,
				MaintenanceFactor: 1.15,
				OccupancyDeltaPts: -5,
			},
			{
				Name:              ScenarioPessimistic,
				Description:       "Flat rents, heavy maintenance and softer occupancy.",
				RevenueFactor:     1.00,
				MaintenanceFactor: 1.30,
				OccupancyDeltaPts: -10,
			},
		},
		Assessment: AssessmentPolicy{
			HighRiskBelow:     40,
			MediumRiskBelow:   70,
			HighProbability:   75,
			MediumProbability: 50,
			LowProbability:    25,
			FallbackReasoning: "Prediction based on risk factor analysis; detailed reasoning was unavailable.",
		},
		Recommend: RecommendPolicy{
			UpsideRatio:             0.15,
			DownsideRatio:           0.15,
			MaintenanceRevenueRatio: 0.15,
			RentOverMarketPercent:   10,
			RenewalWindowDays:       90,
			CriticalWindowDays:      60,
			SystemicHighRiskShare:   0.25,
		},
	}
}

// SeasonalityFor returns the maintenance multiplier for a calendar month (1-12).
func (f ForecastPolicy) SeasonalityFor(month int) float64 {
	if month < 1 || month > len(f.Seasonality) {
		return 1
	}
	return f.Seasonality[month-1]
}

// Validate checks internal consistency.
func (p Policy) Validate() error {
	var errs []error
	f := p.Forecast
	if len(f.Seasonality) != 12 {
		errs = append(errs, fmt.Errorf("forecast.seasonality: want 12 entries, got %d", len(f.Seasonality)))
	}
	for i, s := range f.Seasonality {
		if s <= 0 {
			errs = append(errs, fmt.Errorf("forecast.seasonality[%d]: must be positive", i))
		}
	}
	if f.RenewalRate < 0 || f.RenewalRate > 1 {
		errs = append(errs, errors.New("forecast.renewal_rate: must be within [0, 1]"))
	}
	if f.VacancyImpact < 0 {
		errs = append(errs, errors.New("forecast.vacancy_impact: must be non-negative"))
	}
	if f.OccupancyFloor < 0 || f.OccupancyFloor > f.OccupancyCap {
		errs = append(errs, errors.New("forecast.occupancy_floor: must be within [0, occupancy_cap]"))
	}
	if f.ConfidenceFloor < 0 || f.ConfidenceFloor > f.ConfidenceCap || f.ConfidenceCap > 100 {
		errs = append(errs, errors.New("forecast.confidence bounds: need 0 <= floor <= cap <= 100"))
	}
	if f.ConfidenceDecayPerMonth < 0 || f.MissingHistoryPenalty < 0 {
		errs = append(errs, errors.New("forecast.confidence decay and penalty must be non-negative"))
	}
	if f.MaxHorizonMonths < 1 {
		errs = append(errs, errors.New("forecast.max_horizon_months: must be >= 1"))
	}
	if f.DefaultPortfolioHorizon < 1 || f.DefaultPortfolioHorizon > f.MaxHorizonMonths ||
		f.DefaultPropertyHorizon < 1 || f.DefaultPropertyHorizon > f.MaxHorizonMonths {
		errs = append(errs, errors.New("forecast default horizons: must be within [1, max_horizon_months]"))
	}
	if f.HistoryLookbackMonths < 1 || f.HistoryLookbackMonths > f.MaxHistoryLookbackMonths {
		errs = append(errs, errors.New("forecast.history_lookback_months: must be within [1, max_history_lookback_months]"))
	}
	seen := make(map[string]bool, len(p.Scenarios))
	for i, s := range p.Scenarios {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("scenarios[%d]: name is required", i))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("scenarios[%d]: duplicate name %q", i, s.Name))
		}
		seen[s.Name] = true
		if s.RevenueFactor < 0 || s.MaintenanceFactor < 0 {
			errs = append(errs, fmt.Errorf("scenarios[%d]: factors must be non-negative", i))
		}
	}
	a := p.Assessment
	if a.HighRiskBelow > a.MediumRiskBelow {
		errs = append(errs, errors.New("assessment: high_risk_below must not exceed medium_risk_below"))
	}
	for _, prob := range []float64{a.HighProbability, a.MediumProbability, a.LowProbability} {
		if prob < 0 || prob > 100 {
			errs = append(errs, errors.New("assessment: probabilities must be within [0, 100]"))
			break
		}
	}
	r := p.Recommend
	if r.CriticalWindowDays < 0 || r.RenewalWindowDays < 0 {
		errs = append(errs, errors.New("recommend: windows must be non-negative"))
	}
	return errors.Join(errs...)
}
