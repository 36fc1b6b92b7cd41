package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matthewbaird/insights/internal/forecast"
	"github.com/matthewbaird/insights/internal/recommend"
	"github.com/matthewbaird/insights/internal/store"
	"github.com/matthewbaird/insights/internal/trends"
	"github.com/matthewbaird/insights/internal/types"
)

// Forecast scopes.
const (
	ScopePortfolio = "portfolio"
	ScopeProperty  = "property"
)

// ForecastInput selects a portfolio forecast. A zero HorizonMonths uses the
// policy default.
type ForecastInput struct {
	LandlordID           string
	HorizonMonths        int
	IncludeScenarios     bool
	IncludeMarketFactors bool
}

// ForecastPortfolio projects revenue, maintenance and net income for every
// property of a landlord.
func (s *Service) ForecastPortfolio(ctx context.Context, in ForecastInput) (types.ForecastResult, error) {
	if in.LandlordID == "" {
		return types.ForecastResult{}, invalid("landlord id is required")
	}
	fp := s.cfg.Policy.Forecast
	horizon := in.HorizonMonths
	if horizon == 0 {
		horizon = fp.DefaultPortfolioHorizon
	}
	if horizon < 1 || horizon > fp.MaxHorizonMonths {
		return types.ForecastResult{}, invalid("horizon must be between 1 and %d months, got %d", fp.MaxHorizonMonths, horizon)
	}

	if _, err := s.portfolio.Landlord(ctx, in.LandlordID); err != nil {
		return types.ForecastResult{}, lookupErr("landlord", in.LandlordID, err)
	}
	properties, err := s.portfolio.PropertiesByLandlord(ctx, in.LandlordID)
	if err != nil {
		return types.ForecastResult{}, fmt.Errorf("list properties: %w", err)
	}
	leases, err := s.portfolio.LeasesByLandlord(ctx, in.LandlordID)
	if err != nil {
		return types.ForecastResult{}, fmt.Errorf("list leases: %w", err)
	}

	now := s.nowFn()
	snap, series, err := s.loadHistory(ctx, properties, leases, now)
	if err != nil {
		return types.ForecastResult{}, err
	}
	result, err := s.project(snap, series, horizon, now)
	if err != nil {
		return types.ForecastResult{}, err
	}
	result.Scope = ScopePortfolio
	result.ScopeID = in.LandlordID

	scenarios := forecast.Synthesize(result, s.cfg.Policy.Scenarios)
	if in.IncludeScenarios {
		result.Scenarios = scenarios
	}
	result.Recommendations = recommend.ForForecast(result, scenarios, s.cfg.Policy.Recommend)

	if in.IncludeMarketFactors {
		mi, err := s.marketInsights(ctx, snap)
		if err != nil {
			return types.ForecastResult{}, err
		}
		result.MarketFactors = &mi
	}

	s.log.WithFields(logrus.Fields{
		"landlord_id": in.LandlordID,
		"horizon":     horizon,
		"properties":  snap.PropertyCount,
		"history":     len(series.Records),
	}).Info("portfolio forecast generated")
	return result, nil
}

// ForecastProperty projects a single property. A zero horizon uses the
// policy default; horizons beyond MaxPropertyHorizonMonths are rejected.
func (s *Service) ForecastProperty(ctx context.Context, propertyID string, horizon int) (types.ForecastResult, error) {
	if propertyID == "" {
		return types.ForecastResult{}, invalid("property id is required")
	}
	fp := s.cfg.Policy.Forecast
	if horizon == 0 {
		horizon = fp.DefaultPropertyHorizon
	}
	limit := min(MaxPropertyHorizonMonths, fp.MaxHorizonMonths)
	if horizon < 1 || horizon > limit {
		return types.ForecastResult{}, invalid("horizon must be between 1 and %d months, got %d", limit, horizon)
	}

	property, err := s.portfolio.Property(ctx, propertyID)
	if err != nil {
		return types.ForecastResult{}, lookupErr("property", propertyID, err)
	}
	leases, err := s.portfolio.LeasesByProperty(ctx, propertyID)
	if err != nil {
		return types.ForecastResult{}, fmt.Errorf("list leases: %w", err)
	}

	now := s.nowFn()
	snap, series, err := s.loadHistory(ctx, []types.Property{property}, leases, now)
	if err != nil {
		return types.ForecastResult{}, err
	}
	result, err := s.project(snap, series, horizon, now)
	if err != nil {
		return types.ForecastResult{}, err
	}
	result.Scope = ScopeProperty
	result.ScopeID = propertyID
	result.Recommendations = recommend.ForForecast(result, forecast.Synthesize(result, s.cfg.Policy.Scenarios), s.cfg.Policy.Recommend)

	s.log.WithFields(logrus.Fields{
		"property_id": propertyID,
		"horizon":     horizon,
	}).Info("property forecast generated")
	return result, nil
}

// loadHistory fetches payments and tickets for the properties and builds the
// snapshot and the trend series. An empty property list yields an empty
// snapshot rather than an unfiltered query.
func (s *Service) loadHistory(ctx context.Context, properties []types.Property, leases []types.Lease, now time.Time) (types.PortfolioSnapshot, types.TrendSeries, error) {
	lookback := s.cfg.Policy.Forecast.HistoryLookbackMonths
	var (
		payments []types.Payment
		tickets  []types.MaintenanceTicket
	)
	if len(properties) > 0 {
		ids := make([]string, len(properties))
		for i, p := range properties {
			ids[i] = p.ID
		}
		var err error
		payments, err = s.portfolio.Payments(ctx, store.PaymentFilter{
			PropertyIDs: ids,
			Since:       trends.WindowStart(now, lookback),
			Until:       now,
		})
		if err != nil {
			return types.PortfolioSnapshot{}, types.TrendSeries{}, fmt.Errorf("list payments: %w", err)
		}
		tickets, err = s.portfolio.Tickets(ctx, store.TicketFilter{
			PropertyIDs: ids,
			Since:       now.AddDate(0, -forecast.TicketHistoryMonths, 0),
			Until:       now,
		})
		if err != nil {
			return types.PortfolioSnapshot{}, types.TrendSeries{}, fmt.Errorf("list tickets: %w", err)
		}
	}

	series, err := trends.Aggregate(payments, tickets, lookback, now)
	if err != nil {
		return types.PortfolioSnapshot{}, types.TrendSeries{}, fmt.Errorf("aggregate history: %w", err)
	}
	return forecast.BuildSnapshot(properties, leases, tickets, now), series, nil
}

func (s *Service) project(snap types.PortfolioSnapshot, series types.TrendSeries, horizon int, now time.Time) (types.ForecastResult, error) {
	result, err := forecast.Project(snap, series, horizon, s.cfg.Policy.Forecast, now)
	if errors.Is(err, forecast.ErrInvalidHorizon) {
		return types.ForecastResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err != nil {
		return types.ForecastResult{}, fmt.Errorf("project forecast: %w", err)
	}
	result.History = &series
	result.GeneratedAt = now
	return result, nil
}
