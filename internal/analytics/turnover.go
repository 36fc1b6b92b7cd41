package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/matthewbaird/insights/internal/reasoning"
	"github.com/matthewbaird/insights/internal/recommend"
	"github.com/matthewbaird/insights/internal/risk"
	"github.com/matthewbaird/insights/internal/store"
	"github.com/matthewbaird/insights/internal/turnover"
	"github.com/matthewbaird/insights/internal/types"
)

// PredictTurnover scores one lease and returns its turnover prediction with
// lease-level interventions attached.
func (s *Service) PredictTurnover(ctx context.Context, leaseID string) (types.TurnoverPrediction, error) {
	if leaseID == "" {
		return types.TurnoverPrediction{}, invalid("lease id is required")
	}
	lease, err := s.portfolio.Lease(ctx, leaseID)
	if err != nil {
		return types.TurnoverPrediction{}, lookupErr("lease", leaseID, err)
	}
	pred, err := s.assess(ctx, lease, s.nowFn())
	if err != nil {
		return types.TurnoverPrediction{}, err
	}
	s.log.WithFields(logrus.Fields{
		"lease_id":   leaseID,
		"risk_level": pred.RiskLevel,
		"source":     pred.Source,
	}).Info("turnover prediction generated")
	return pred, nil
}

// AnalyzePortfolioTurnover assesses every active lease of a landlord with
// bounded concurrency. A lease whose data cannot be loaded is reported as an
// error entry at unknown risk; it never fails the analysis.
func (s *Service) AnalyzePortfolioTurnover(ctx context.Context, landlordID string) (types.PortfolioTurnoverAnalysis, error) {
	if landlordID == "" {
		return types.PortfolioTurnoverAnalysis{}, invalid("landlord id is required")
	}
	if _, err := s.portfolio.Landlord(ctx, landlordID); err != nil {
		return types.PortfolioTurnoverAnalysis{}, lookupErr("landlord", landlordID, err)
	}
	leases, err := s.portfolio.LeasesByLandlord(ctx, landlordID, types.LeaseActive)
	if err != nil {
		return types.PortfolioTurnoverAnalysis{}, fmt.Errorf("list leases: %w", err)
	}

	now := s.nowFn()
	entries := make([]types.LeaseRiskEntry, len(leases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentAssessments)
	for i, lease := range leases {
		g.Go(func() error {
			entry := types.LeaseRiskEntry{
				LeaseID:         lease.ID,
				PropertyID:      lease.PropertyID,
				TenantID:        lease.TenantID,
				DaysUntilExpiry: risk.ExpiryDays(lease, now),
			}
			pred, err := s.assess(gctx, lease, now)
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"lease_id": lease.ID,
					"error":    err.Error(),
				}).Warn("lease assessment failed")
				entry.RiskLevel = types.RiskUnknown
				entry.Error = true
				entry.ErrorMessage = err.Error()
			} else {
				entry.RiskLevel = pred.RiskLevel
				entry.Probability = pred.Probability
				entry.Timeframe = pred.Timeframe
				entry.Source = pred.Source
			}
			entries[i] = entry
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return types.PortfolioTurnoverAnalysis{}, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Probability != entries[j].Probability {
			return entries[i].Probability > entries[j].Probability
		}
		return entries[i].LeaseID < entries[j].LeaseID
	})

	analysis := types.PortfolioTurnoverAnalysis{
		AnalysisID:      uuid.NewString(),
		LandlordID:      landlordID,
		TotalLeases:     len(entries),
		Breakdown:       Breakdown(entries),
		Leases:          entries,
		PriorityActions: recommend.ForPortfolio(entries, s.cfg.Policy.Recommend),
		GeneratedAt:     now,
	}
	s.log.WithFields(logrus.Fields{
		"landlord_id": landlordID,
		"analysis_id": analysis.AnalysisID,
		"leases":      analysis.TotalLeases,
		"high":        analysis.Breakdown.High,
	}).Info("portfolio turnover analysed")
	return analysis, nil
}

// Breakdown counts entries per risk level. Low-medium counts as low and error
// entries as unknown.
func Breakdown(entries []types.LeaseRiskEntry) types.RiskBreakdown {
	var b types.RiskBreakdown
	for _, e := range entries {
		switch {
		case e.Error:
			b.Unknown++
		case e.RiskLevel == types.RiskHigh:
			b.High++
		case e.RiskLevel == types.RiskMedium:
			b.Medium++
		case e.RiskLevel == types.RiskLow, e.RiskLevel == types.RiskLowMedium:
			b.Low++
		default:
			b.Unknown++
		}
	}
	return b
}

// assess loads the lease context, runs the evaluators and the composite
// assessor, and attaches interventions.
func (s *Service) assess(ctx context.Context, lease types.Lease, now time.Time) (types.TurnoverPrediction, error) {
	lc, err := s.leaseContext(ctx, lease, now)
	if err != nil {
		return types.TurnoverPrediction{}, err
	}
	factors := risk.EvaluateAll(lc)
	days := lc.DaysUntilExpiry()

	pred := s.assessor.Assess(ctx, turnover.Input{
		Lease:           lease,
		Factors:         factors,
		DaysUntilExpiry: days,
		Facts:           leaseFacts(lc, days),
	})
	pred.Recommendations = recommend.ForLease(factors, pred, days, s.cfg.Policy.Recommend)
	return pred, nil
}

// leaseContext gathers what the evaluators look at. A missing tenant or
// property degrades the corresponding factors instead of failing.
func (s *Service) leaseContext(ctx context.Context, lease types.Lease, now time.Time) (risk.LeaseContext, error) {
	lc := risk.LeaseContext{Lease: lease, Now: now}
	since := now.AddDate(-1, 0, 0)

	if lease.TenantID != "" {
		tenant, err := s.portfolio.Tenant(ctx, lease.TenantID)
		switch {
		case err == nil:
			lc.Tenant = &tenant
		case !errors.Is(err, store.ErrNotFound):
			return lc, fmt.Errorf("load tenant %s: %w", lease.TenantID, err)
		}
	}

	property, err := s.portfolio.Property(ctx, lease.PropertyID)
	switch {
	case err == nil:
		lc.Property = &property
	case !errors.Is(err, store.ErrNotFound):
		return lc, fmt.Errorf("load property %s: %w", lease.PropertyID, err)
	}

	lc.Payments, err = s.portfolio.Payments(ctx, store.PaymentFilter{LeaseID: lease.ID, Since: since, Until: now})
	if err != nil {
		return lc, fmt.Errorf("list payments: %w", err)
	}
	lc.Tickets, err = s.portfolio.Tickets(ctx, store.TicketFilter{PropertyIDs: []string{lease.PropertyID}, Since: since, Until: now})
	if err != nil {
		return lc, fmt.Errorf("list tickets: %w", err)
	}

	if lc.Property != nil && s.comparables != nil {
		lc.Comparables, err = s.comparables.Comparables(ctx, store.CriteriaFor(*lc.Property, store.DefaultComparableLimit))
		if err != nil {
			return lc, fmt.Errorf("list comparables: %w", err)
		}
	}

	history, err := s.portfolio.LeasesByProperty(ctx, lease.PropertyID)
	if err != nil {
		return lc, fmt.Errorf("list lease history: %w", err)
	}
	for _, h := range history {
		if h.ID != lease.ID {
			lc.History = append(lc.History, h)
		}
	}
	return lc, nil
}

const openEnded = "open-ended"

func leaseFacts(lc risk.LeaseContext, days *int) []reasoning.Fact {
	l := lc.Lease
	period, remaining := openEnded, openEnded
	if days != nil {
		period = l.EndDate.Format(time.DateOnly)
		remaining = fmt.Sprintf("%d", *days)
	}
	facts := []reasoning.Fact{
		{Label: "Monthly rent", Value: fmt.Sprintf("%.2f", l.MonthlyRent)},
		{Label: "Lease period", Value: dateOrUnknown(l.StartDate) + " to " + period},
		{Label: "Days until expiry", Value: remaining},
		{Label: "Payments in the last 12 months", Value: fmt.Sprintf("%d", len(lc.Payments))},
		{Label: "Maintenance tickets in the last 12 months", Value: fmt.Sprintf("%d", len(lc.Tickets))},
		{Label: "Previous leases on the property", Value: fmt.Sprintf("%d", len(lc.History))},
	}
	if p := lc.Property; p != nil {
		facts = append(facts, reasoning.Fact{Label: "Property type", Value: p.PropertyType})
		if p.Bedrooms != nil {
			facts = append(facts, reasoning.Fact{Label: "Bedrooms", Value: fmt.Sprintf("%d", *p.Bedrooms)})
		}
		if len(p.Amenities) > 0 {
			facts = append(facts, reasoning.Fact{Label: "Amenities", Value: strings.Join(p.Amenities, ", ")})
		}
	}
	return facts
}

func dateOrUnknown(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(time.DateOnly)
}
