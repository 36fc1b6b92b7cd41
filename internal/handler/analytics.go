package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/matthewbaird/insights/internal/analytics"
	"github.com/matthewbaird/insights/internal/types"
)

// Analytics is the engine surface served over HTTP.
type Analytics interface {
	ForecastPortfolio(ctx context.Context, in analytics.ForecastInput) (types.ForecastResult, error)
	ForecastProperty(ctx context.Context, propertyID string, horizon int) (types.ForecastResult, error)
	PredictTurnover(ctx context.Context, leaseID string) (types.TurnoverPrediction, error)
	AnalyzePortfolioTurnover(ctx context.Context, landlordID string) (types.PortfolioTurnoverAnalysis, error)
	MarketInsights(ctx context.Context, landlordID string) (types.MarketInsights, error)
}

// AnalyticsHandler serves forecasts, turnover predictions and market insights.
type AnalyticsHandler struct {
	svc Analytics
	log logrus.FieldLogger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc Analytics, log logrus.FieldLogger) *AnalyticsHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AnalyticsHandler{svc: svc, log: log}
}

// Routes registers the analytics endpoints on r.
func (h *AnalyticsHandler) Routes(r chi.Router) {
	r.Get("/landlords/{landlord_id}/forecast", h.ForecastPortfolio)
	r.Get("/landlords/{landlord_id}/turnover", h.AnalyzePortfolioTurnover)
	r.Get("/landlords/{landlord_id}/market", h.MarketInsights)
	r.Get("/properties/{property_id}/forecast", h.ForecastProperty)
	r.Get("/leases/{lease_id}/turnover", h.PredictTurnover)
}

// ForecastPortfolio handles GET /v1/landlords/{landlord_id}/forecast.
// Scenarios are included unless scenarios=false; market factors only with
// market=true.
func (h *AnalyticsHandler) ForecastPortfolio(w http.ResponseWriter, r *http.Request) {
	horizon, err := parseInt(r, "horizon")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	scenarios, err := parseBool(r, "scenarios", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	market, err := parseBool(r, "market", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	res, err := h.svc.ForecastPortfolio(r.Context(), analytics.ForecastInput{
		LandlordID:           chi.URLParam(r, "landlord_id"),
		HorizonMonths:        horizon,
		IncludeScenarios:     scenarios,
		IncludeMarketFactors: market,
	})
	if err != nil {
		serviceErrorToHTTP(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ForecastProperty handles GET /v1/properties/{property_id}/forecast.
func (h *AnalyticsHandler) ForecastProperty(w http.ResponseWriter, r *http.Request) {
	horizon, err := parseInt(r, "horizon")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	res, err := h.svc.ForecastProperty(r.Context(), chi.URLParam(r, "property_id"), horizon)
	if err != nil {
		serviceErrorToHTTP(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PredictTurnover handles GET /v1/leases/{lease_id}/turnover.
func (h *AnalyticsHandler) PredictTurnover(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.PredictTurnover(r.Context(), chi.URLParam(r, "lease_id"))
	if err != nil {
		serviceErrorToHTTP(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AnalyzePortfolioTurnover handles GET /v1/landlords/{landlord_id}/turnover.
func (h *AnalyticsHandler) AnalyzePortfolioTurnover(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.AnalyzePortfolioTurnover(r.Context(), chi.URLParam(r, "landlord_id"))
	if err != nil {
		serviceErrorToHTTP(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// MarketInsights handles GET /v1/landlords/{landlord_id}/market.
func (h *AnalyticsHandler) MarketInsights(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.MarketInsights(r.Context(), chi.URLParam(r, "landlord_id"))
	if err != nil {
		serviceErrorToHTTP(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
