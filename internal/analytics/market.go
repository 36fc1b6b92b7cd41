package analytics

import (
	"context"
	"fmt"

	"github.com/matthewbaird/insights/internal/forecast"
	"github.com/matthewbaird/insights/internal/risk"
	"github.com/matthewbaird/insights/internal/store"
	"github.com/matthewbaird/insights/internal/types"
)

// Market positions.
const (
	PositionAbove   = "above"
	PositionAt      = "at"
	PositionBelow   = "below"
	PositionUnknown = "unknown"
)

// parityPercent is the gap within which rent counts as at market.
const parityPercent = 5

// MarketInsights compares the current rent of every property of a landlord
// with its active comparables.
func (s *Service) MarketInsights(ctx context.Context, landlordID string) (types.MarketInsights, error) {
	if landlordID == "" {
		return types.MarketInsights{}, invalid("landlord id is required")
	}
	if _, err := s.portfolio.Landlord(ctx, landlordID); err != nil {
		return types.MarketInsights{}, lookupErr("landlord", landlordID, err)
	}
	properties, err := s.portfolio.PropertiesByLandlord(ctx, landlordID)
	if err != nil {
		return types.MarketInsights{}, fmt.Errorf("list properties: %w", err)
	}
	leases, err := s.portfolio.LeasesByLandlord(ctx, landlordID, types.LeaseActive)
	if err != nil {
		return types.MarketInsights{}, fmt.Errorf("list leases: %w", err)
	}
	return s.marketInsights(ctx, forecast.BuildSnapshot(properties, leases, nil, s.nowFn()))
}

func (s *Service) marketInsights(ctx context.Context, snap types.PortfolioSnapshot) (types.MarketInsights, error) {
	mi := types.MarketInsights{Properties: make([]types.PropertyMarketInsight, 0, len(snap.Properties))}
	var gapSum float64
	var compared int
	for _, state := range snap.Properties {
		var comps []types.Property
		if s.comparables != nil {
			var err error
			comps, err = s.comparables.Comparables(ctx, store.CriteriaFor(state.Property, store.DefaultComparableLimit))
			if err != nil {
				return types.MarketInsights{}, fmt.Errorf("list comparables for %s: %w", state.Property.ID, err)
			}
		}

		f := risk.RentCompetitiveness(state.CurrentRent, comps)
		insight := types.PropertyMarketInsight{
			PropertyID:  state.Property.ID,
			CurrentRent: state.CurrentRent,
			RiskLevel:   f.RiskLevel,
			Position:    PositionUnknown,
		}
		if f.RiskLevel == types.RiskUnknown {
			mi.PropertiesWithoutComps++
			mi.Properties = append(mi.Properties, insight)
			continue
		}

		insight.MarketAverageRent = f.Metrics["market_average_rent"]
		insight.ComparableCount = int(f.Metrics["comparables"])
		insight.PercentVsMarket = f.Metrics["percent_vs_market"]
		switch {
		case insight.PercentVsMarket > parityPercent:
			insight.Position = PositionAbove
			mi.PropertiesAboveMarket++
		case insight.PercentVsMarket < -parityPercent:
			insight.Position = PositionBelow
			mi.PropertiesBelowMarket++
		default:
			insight.Position = PositionAt
		}
		gapSum += insight.PercentVsMarket
		compared++
		mi.Properties = append(mi.Properties, insight)
	}
	if compared > 0 {
		mi.AveragePercentVsMarket = types.Round2(gapSum / float64(compared))
	}
	return mi, nil
}
