package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/matthewbaird/insights/internal/policy"
	"github.com/matthewbaird/insights/internal/types"
)

// ErrInvalidHorizon is returned for a horizon outside [1, MaxHorizonMonths].
var ErrInvalidHorizon = errors.New("forecast horizon out of range")

// Project builds the base forecast curve for horizon months starting with the
// month after now. The snapshot supplies current revenue, maintenance and
// active leases; the series supplies the growth rate and the amount of
// history backing the confidence figures.
func Project(snap types.PortfolioSnapshot, series types.TrendSeries, horizon int, p policy.ForecastPolicy, now time.Time) (types.ForecastResult, error) {
	if horizon < 1 || horizon > p.MaxHorizonMonths {
		return types.ForecastResult{}, fmt.Errorf("%w: %d not within [1, %d]", ErrInvalidHorizon, horizon, p.MaxHorizonMonths)
	}

	active := snap.ActiveLeases()
	growth := 1 + series.RevenueGrowthRate/100
	inflation := 1 + p.MonthlyMaintenanceInflation
	missing := math.Max(0, float64(p.HistoryBaselineMonths-len(series.Records)))
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	months := make([]types.ForecastMonth, 0, horizon)
	prevConfidence := p.ConfidenceCap
	for i := 1; i <= horizon; i++ {
		date := start.AddDate(0, i, 0)

		mult := OccupancyMultiplier(active, date, p)
		revenue := snap.TotalMonthlyRevenue * math.Pow(growth, float64(i)) * mult
		maintenance := snap.AverageMonthlyMaintenanceCost *
			math.Pow(inflation, float64(i)) *
			p.SeasonalityFor(int(date.Month()))

		confidence := p.ConfidenceStart -
			p.ConfidenceDecayPerMonth*float64(i-1) -
			p.MissingHistoryPenalty*missing
		confidence = clamp(confidence, p.ConfidenceFloor, p.ConfidenceCap)
		confidence = math.Min(confidence, prevConfidence)
		prevConfidence = confidence

		revenue = types.Round2(revenue)
		maintenance = types.Round2(maintenance)
		months = append(months, types.ForecastMonth{
			MonthIndex:           i,
			Date:                 date,
			ProjectedRevenue:     revenue,
			ProjectedMaintenance: maintenance,
			ProjectedNetIncome:   types.Round2(revenue - maintenance),
			OccupancyRate:        types.Round2(clamp(snap.OccupancyRate*mult, 0, 100)),
			Confidence:           types.Round2(confidence),
		})
	}

	return types.ForecastResult{
		HorizonMonths:    horizon,
		MonthlyForecasts: months,
		Summary:          Summarize(months, snap.TotalMonthlyRevenue*12),
	}, nil
}

// OccupancyMultiplier is the revenue retained in the month starting at date
// once leases ending before it are assumed to renew at the policy rate:
//
//	clamp(1 - share*(1-renewal)*impact, floor, cap)
//
// where share is the fraction of active leases that have ended. With no
// active leases the multiplier is 1.
func OccupancyMultiplier(active []types.Lease, date time.Time, p policy.ForecastPolicy) float64 {
	if len(active) == 0 {
		return clamp(1, p.OccupancyFloor, p.OccupancyCap)
	}
	var expiring int
	for _, l := range active {
		if !l.EndDate.IsZero() && l.EndDate.Before(date) {
			expiring++
		}
	}
	share := float64(expiring) / float64(len(active))
	nonRenewed := share * (1 - p.RenewalRate)
	return clamp(1-nonRenewed*p.VacancyImpact, p.OccupancyFloor, p.OccupancyCap)
}

// Summarize totals a forecast curve. ROI compares the total net income with
// the baseline annual revenue and is 0 when the baseline is 0.
func Summarize(months []types.ForecastMonth, baselineAnnual float64) types.ForecastSummary {
	var s types.ForecastSummary
	for _, m := range months {
		s.TotalProjectedRevenue += m.ProjectedRevenue
		s.TotalProjectedMaintenance += m.ProjectedMaintenance
		s.TotalProjectedNetIncome += m.ProjectedNetIncome
	}
	if len(months) > 0 {
		s.AverageMonthlyNetIncome = types.Round2(s.TotalProjectedNetIncome / float64(len(months)))
	}
	if baselineAnnual > 0 {
		s.ProjectedROI = types.Round2((s.TotalProjectedNetIncome - baselineAnnual) / baselineAnnual * 100)
	}
	s.TotalProjectedRevenue = types.Round2(s.TotalProjectedRevenue)
	s.TotalProjectedMaintenance = types.Round2(s.TotalProjectedMaintenance)
	s.TotalProjectedNetIncome = types.Round2(s.TotalProjectedNetIncome)
	s.BaselineAnnualRevenue = types.Round2(baselineAnnual)
	return s
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
