package risk

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/matthewbaird/insights/internal/types"
)

// band maps an upper bound (inclusive unless noted) to a level and score.
type band struct {
	Limit float64
	Level types.RiskLevel
	Score float64
}

// Lease term: days until expiry, checked in order (<= Limit).
var leaseTermBands = []band{
	{Limit: 60, Level: types.RiskHigh, Score: 30},
	{Limit: 90, Level: types.RiskMedium, Score: 60},
	{Limit: 180, Level: types.RiskLowMedium, Score: 80},
}

const (
	shortLeaseMonths  = 6
	shortLeasePenalty = 20
	shortLeaseFloor   = 10
)

// Payment history thresholds (fractions of payments due).
const (
	missedRateHigh    = 0.10
	lateRateMedium    = 0.30
	lateRateLowMedium = 0.10
)

// Maintenance thresholds (counts over 12 months).
const (
	maintOpenHigh        = 2
	maintHighPriorityMax = 1
	maintTotalMedium     = 5
	maintTotalLowMedium  = 2
)

// Rent competitiveness: percent above market, checked in order (> Limit).
var rentOverMarketBands = []band{
	{Limit: 20, Level: types.RiskHigh, Score: 20},
	{Limit: 10, Level: types.RiskMedium, Score: 50},
	{Limit: 5, Level: types.RiskLowMedium, Score: 75},
}

const (
	rentUnderMarketPercent = -10
	rentUnderMarketScore   = 60
	maxComparables         = 20
)

// Profile and desirability penalties.
const (
	penaltyMissingBudget      = 10
	penaltyMissingContact     = 15
	penaltyMissingPreferences = 10
	penaltyMissingSize        = 10
	penaltyMissingAmenities   = 15
	penaltyStudio             = 20
)

// Score-derived levels for profile and desirability: >= 80 low, >= 60 medium.
const (
	scoreLowRisk    = 80
	scoreMediumRisk = 60
)

// Historical turnover.
const (
	maxHistoryLeases     = 10
	durationHighMonths   = 8
	durationMediumMonths = 12
	earlyTerminationRate = 0.30
	earlyTerminationCap  = 40
	averageDaysPerMonth  = 30.44
	trailingWindowMonths = 12
)

// PaymentHistory scores late and missed payments due in the trailing 12 months.
func PaymentHistory(payments []types.Payment, now time.Time) types.RiskFactor {
	since := now.AddDate(0, -trailingWindowMonths, 0)
	var total, late, missed int
	for _, p := range payments {
		if p.DueDate.Before(since) || p.DueDate.After(now) || p.Status == types.PaymentPending {
			continue
		}
		total++
		switch p.Status {
		case types.PaymentLate:
			late++
		case types.PaymentMissed:
			missed++
		}
	}
	if total == 0 {
		return unknown(FactorPaymentHistory, "No payment history in the last 12 months.")
	}

	lateRate := float64(late) / float64(total)
	missedRate := float64(missed) / float64(total)
	metrics := map[string]float64{
		"payments_due": float64(total),
		"late_rate":    types.Round2(lateRate * 100),
		"missed_rate":  types.Round2(missedRate * 100),
	}
	details := fmt.Sprintf("%d of %d payments late, %d missed in the last 12 months.", late, total, missed)

	f := types.RiskFactor{Name: FactorPaymentHistory, Details: details, Metrics: metrics}
	switch {
	case missedRate > missedRateHigh:
		f.RiskLevel, f.Score = types.RiskHigh, 20
	case lateRate > lateRateMedium || missed > 0:
		f.RiskLevel, f.Score = types.RiskMedium, 50
	case lateRate > lateRateLowMedium:
		f.RiskLevel, f.Score = types.RiskLowMedium, 75
	default:
		f.RiskLevel, f.Score = types.RiskLow, 100
	}
	return f
}

// LeaseTerm scores how close the lease is to expiring. Leases of six months
// or less lose a further 20 points.
func LeaseTerm(lease types.Lease, now time.Time) types.RiskFactor {
	if lease.EndDate.IsZero() {
		return unknown(FactorLeaseTerm, "Lease has no end date.")
	}
	days := DaysUntil(lease.EndDate, now)

	f := types.RiskFactor{
		Name:      FactorLeaseTerm,
		RiskLevel: types.RiskLow,
		Score:     100,
		Metrics:   map[string]float64{"days_until_expiry": float64(days)},
	}
	for _, b := range leaseTermBands {
		if float64(days) <= b.Limit {
			f.RiskLevel, f.Score = b.Level, b.Score
			break
		}
	}

	details := fmt.Sprintf("Lease ends in %d days.", days)
	if days < 0 {
		details = fmt.Sprintf("Lease ended %d days ago.", -days)
	}
	if !lease.StartDate.IsZero() {
		months := lease.EndDate.Sub(lease.StartDate).Hours() / 24 / averageDaysPerMonth
		f.Metrics["lease_months"] = types.Round2(months)
		if !lease.EndDate.After(lease.StartDate.AddDate(0, shortLeaseMonths, 0)) {
			f.Score -= shortLeasePenalty
			if f.Score < shortLeaseFloor {
				f.Score = shortLeaseFloor
			}
			details += " Short lease term (6 months or less)."
		}
	}
	f.Details = details
	return f
}

// MaintenanceIssues scores ticket volume, open tickets and urgency over the
// trailing 12 months.
func MaintenanceIssues(tickets []types.MaintenanceTicket, now time.Time) types.RiskFactor {
	since := now.AddDate(0, -trailingWindowMonths, 0)
	var total, open, urgent int
	for _, t := range tickets {
		if t.CreatedAt.Before(since) || t.CreatedAt.After(now) {
			continue
		}
		total++
		if t.IsOpen() {
			open++
		}
		if t.IsHighPriority() {
			urgent++
		}
	}

	f := types.RiskFactor{
		Name:    FactorMaintenanceIssues,
		Details: fmt.Sprintf("%d tickets in the last 12 months, %d open, %d high priority.", total, open, urgent),
		Metrics: map[string]float64{
			"tickets":       float64(total),
			"open":          float64(open),
			"high_priority": float64(urgent),
		},
	}
	switch {
	case open > maintOpenHigh || urgent > maintHighPriorityMax:
		f.RiskLevel, f.Score = types.RiskHigh, 25
	case total > maintTotalMedium || open > 0:
		f.RiskLevel, f.Score = types.RiskMedium, 50
	case total > maintTotalLowMedium:
		f.RiskLevel, f.Score = types.RiskLowMedium, 75
	default:
		f.RiskLevel, f.Score = types.RiskLow, 100
	}
	return f
}

// RentCompetitiveness compares rent to the mean of up to 20 comparables.
// Rent far below market is flagged as an anomaly rather than treated as safe.
func RentCompetitiveness(rent float64, comparables []types.Property) types.RiskFactor {
	if rent <= 0 {
		return unknown(FactorRentCompetitiveness, "Current rent is not known.")
	}
	var sum float64
	var n int
	for _, c := range comparables {
		if n == maxComparables {
			break
		}
		if c.MonthlyRent <= 0 {
			continue
		}
		sum += c.MonthlyRent
		n++
	}
	if n == 0 {
		return unknown(FactorRentCompetitiveness, "No comparable properties found for market comparison.")
	}

	avg := sum / float64(n)
	diff := (rent - avg) / avg * 100
	f := types.RiskFactor{
		Name:      FactorRentCompetitiveness,
		RiskLevel: types.RiskLow,
		Score:     100,
		Metrics: map[string]float64{
			"market_average_rent": types.Round2(avg),
			"percent_vs_market":   types.Round2(diff),
			"comparables":         float64(n),
		},
	}
	for _, b := range rentOverMarketBands {
		if diff > b.Limit {
			f.RiskLevel, f.Score = b.Level, b.Score
			f.Details = fmt.Sprintf("Rent is %.1f%% above the market average of %.2f across %d comparables.", diff, avg, n)
			return f
		}
	}
	if diff < rentUnderMarketPercent {
		f.RiskLevel, f.Score = types.RiskMedium, rentUnderMarketScore
		f.Details = fmt.Sprintf("Rent is %.1f%% below the market average of %.2f; review for pricing anomalies.", -diff, avg)
		return f
	}
	f.Details = fmt.Sprintf("Rent is within market range (%.1f%% vs average of %.2f).", diff, avg)
	return f
}

// TenantProfile scores how complete the tenant profile is.
func TenantProfile(tenant *types.Tenant) types.RiskFactor {
	if tenant == nil {
		return unknown(FactorTenantProfile, "No tenant profile on file.")
	}
	score := 100.0
	var missing []string
	if tenant.BudgetMin == nil && tenant.BudgetMax == nil {
		score -= penaltyMissingBudget
		missing = append(missing, "budget range")
	}
	if strings.TrimSpace(tenant.Email) == "" || strings.TrimSpace(tenant.Phone) == "" {
		score -= penaltyMissingContact
		missing = append(missing, "contact details")
	}
	if len(tenant.Preferences) == 0 {
		score -= penaltyMissingPreferences
		missing = append(missing, "stated preferences")
	}

	details := "Tenant profile is complete."
	if len(missing) > 0 {
		details = "Tenant profile is missing " + strings.Join(missing, ", ") + "."
	}
	return types.RiskFactor{
		Name:      FactorTenantProfile,
		RiskLevel: levelForScore(score),
		Score:     score,
		Details:   details,
	}
}

// PropertyDesirability scores property attributes that correlate with
// turnover. Studios are penalised; houses, condos and townhouses are noted as
// favourable without changing the score.
func PropertyDesirability(property *types.Property) types.RiskFactor {
	if property == nil {
		return unknown(FactorPropertyDesirability, "Property details are not available.")
	}
	score := 100.0
	var notes []string
	if property.SquareFeet == nil || *property.SquareFeet <= 0 {
		score -= penaltyMissingSize
		notes = append(notes, "size data is missing")
	}
	if len(property.Amenities) == 0 {
		score -= penaltyMissingAmenities
		notes = append(notes, "no amenities listed")
	}
	switch strings.ToLower(property.PropertyType) {
	case types.PropertyStudio:
		score -= penaltyStudio
		notes = append(notes, "studio units see higher turnover")
	case types.PropertyHouse, types.PropertyCondo, types.PropertyTownhouse:
		notes = append(notes, property.PropertyType+" units tend to retain tenants longer")
	}

	details := "Property profile supports retention."
	if len(notes) > 0 {
		details = "Property: " + strings.Join(notes, "; ") + "."
	}
	return types.RiskFactor{
		Name:      FactorPropertyDesirability,
		RiskLevel: levelForScore(score),
		Score:     score,
		Details:   details,
	}
}

// HistoricalTurnover scores the property's past tenancies: the mean duration
// of up to 10 most recent ended leases and their early-termination rate.
// Ended leases without a start, or ending before they start, are ignored.
func HistoricalTurnover(history []types.Lease) types.RiskFactor {
	var ended []types.Lease
	var undated int
	for _, l := range history {
		if l.Status != types.LeaseTerminated && l.Status != types.LeaseExpired {
			continue
		}
		if end := leaseEnd(l); l.StartDate.IsZero() || !end.After(l.StartDate) {
			undated++
			continue
		}
		ended = append(ended, l)
	}
	if len(ended) == 0 {
		if undated > 0 {
			return unknown(FactorHistoricalTurnover, fmt.Sprintf("%d past leases on this property lack usable start or end dates.", undated))
		}
		return unknown(FactorHistoricalTurnover, "No historical leases on this property.")
	}
	sort.SliceStable(ended, func(i, j int) bool {
		return leaseEnd(ended[i]).After(leaseEnd(ended[j]))
	})
	if len(ended) > maxHistoryLeases {
		ended = ended[:maxHistoryLeases]
	}

	var months float64
	var early int
	for _, l := range ended {
		months += leaseEnd(l).Sub(l.StartDate).Hours() / 24 / averageDaysPerMonth
		if l.TerminatedEarly {
			early++
		}
	}
	avg := months / float64(len(ended))
	earlyRate := float64(early) / float64(len(ended))

	f := types.RiskFactor{
		Name: FactorHistoricalTurnover,
		Metrics: map[string]float64{
			"average_lease_months":   types.Round2(avg),
			"early_termination_rate": types.Round2(earlyRate * 100),
			"leases_considered":      float64(len(ended)),
		},
	}
	switch {
	case avg < durationHighMonths:
		f.RiskLevel, f.Score = types.RiskHigh, 30
	case avg < durationMediumMonths:
		f.RiskLevel, f.Score = types.RiskMedium, 60
	default:
		f.RiskLevel, f.Score = types.RiskLow, 100
	}
	f.Details = fmt.Sprintf("Average tenancy %.1f months across %d past leases; %.0f%% ended early.", avg, len(ended), earlyRate*100)
	if earlyRate > earlyTerminationRate {
		f.RiskLevel = types.RiskHigh
		if f.Score > earlyTerminationCap {
			f.Score = earlyTerminationCap
		}
	}
	return f
}

// leaseEnd is when a lease actually ended: the termination date when set.
func leaseEnd(l types.Lease) time.Time {
	if l.TerminatedAt != nil {
		return *l.TerminatedAt
	}
	return l.EndDate
}

func levelForScore(score float64) types.RiskLevel {
	switch {
	case score >= scoreLowRisk:
		return types.RiskLow
	case score >= scoreMediumRisk:
		return types.RiskMedium
	default:
		return types.RiskHigh
	}
}

func unknown(name, details string) types.RiskFactor {
	return types.RiskFactor{
		Name:      name,
		RiskLevel: types.RiskUnknown,
		Score:     UnknownScore,
		Details:   details,
	}
}
