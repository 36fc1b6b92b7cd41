// Package trends turns raw payment and maintenance records into a monthly
// revenue/cost/net-income history with summary growth figures.
package trends

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/matthewbaird/insights/internal/types"
)

// MonthLayout is the key format of MonthlyRecord.Month.
const MonthLayout = "2006-01"

// Lookback bounds in months.
const (
	MinLookbackMonths = 1
	MaxLookbackMonths = 36
)

// ErrInvalidLookback is returned for a window outside [1, 36] months.
var ErrInvalidLookback = errors.New("lookback window must be between 1 and 36 months")

type bucket struct {
	revenue     float64
	maintenance float64
	due         int
	onTime      int
}

// Aggregate buckets payments (by due date) and ticket costs (by creation date)
// into calendar months over the lookback window ending at now. Only months
// with at least one payment or ticket appear in the series.
func Aggregate(payments []types.Payment, tickets []types.MaintenanceTicket, months int, now time.Time) (types.TrendSeries, error) {
	if months < MinLookbackMonths || months > MaxLookbackMonths {
		return types.TrendSeries{}, fmt.Errorf("%w: got %d", ErrInvalidLookback, months)
	}

	since := WindowStart(now, months)
	buckets := make(map[string]*bucket)
	get := func(t time.Time) *bucket {
		key := t.Format(MonthLayout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		return b
	}

	for _, p := range payments {
		if p.Status == types.PaymentPending || p.DueDate.Before(since) || p.DueDate.After(now) {
			continue
		}
		b := get(p.DueDate)
		b.due++
		if p.Collected() {
			b.revenue += p.Amount
		}
		if p.Status == types.PaymentPaid {
			b.onTime++
		}
	}

	for _, t := range tickets {
		if t.CreatedAt.Before(since) || t.CreatedAt.After(now) {
			continue
		}
		get(t.CreatedAt).maintenance += t.Cost
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := types.TrendSeries{Records: make([]types.MonthlyRecord, 0, len(keys))}
	var totalRevenue, totalMaintenance float64
	for _, k := range keys {
		b := buckets[k]
		rate := 0.0
		if b.due > 0 {
			rate = float64(b.onTime) / float64(b.due) * 100
		}
		series.Records = append(series.Records, types.MonthlyRecord{
			Month:              k,
			Revenue:            types.Round2(b.revenue),
			MaintenanceCost:    types.Round2(b.maintenance),
			NetIncome:          types.Round2(b.revenue - b.maintenance),
			PaymentSuccessRate: types.Round2(rate),
		})
		totalRevenue += b.revenue
		totalMaintenance += b.maintenance
	}

	if n := len(series.Records); n > 0 {
		series.AverageMonthlyRevenue = types.Round2(totalRevenue / float64(n))
		series.AverageMonthlyMaintenance = types.Round2(totalMaintenance / float64(n))
	}
	series.RevenueGrowthRate = GrowthRate(series.Records)
	return series, nil
}

// GrowthRate returns the compounded monthly revenue growth in percent between
// the first and last months with non-zero revenue:
//
//	((last/first)^(1/months) - 1) * 100
//
// where months is the number of calendar months separating them. Fewer than
// two data points yield 0.
func GrowthRate(records []types.MonthlyRecord) float64 {
	if len(records) < 2 {
		return 0
	}
	var nonZero []types.MonthlyRecord
	for _, r := range records {
		if r.Revenue != 0 {
			nonZero = append(nonZero, r)
		}
	}
	if len(nonZero) < 2 {
		return 0
	}
	first, last := nonZero[0], nonZero[len(nonZero)-1]

	span := MonthsBetween(first.Month, last.Month)
	if span < 1 {
		return 0
	}
	ratio := last.Revenue / first.Revenue
	if ratio <= 0 {
		return 0
	}
	return types.Round2((math.Pow(ratio, 1/float64(span)) - 1) * 100)
}

// MonthsBetween returns the number of calendar months from a to b, both
// "YYYY-MM" keys. Unparseable keys yield 0.
func MonthsBetween(a, b string) int {
	ta, errA := time.Parse(MonthLayout, a)
	tb, errB := time.Parse(MonthLayout, b)
	if errA != nil || errB != nil {
		return 0
	}
	return (tb.Year()-ta.Year())*12 + int(tb.Month()-ta.Month())
}

// WindowStart returns the first instant of the lookback window: the start of
// the calendar month months-1 before now's month.
func WindowStart(now time.Time, months int) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -(months - 1), 0)
}
