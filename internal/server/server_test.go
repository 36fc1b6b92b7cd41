package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/insights/internal/analytics"
	"github.com/matthewbaird/insights/internal/policy"
	"github.com/matthewbaird/insights/internal/seed"
	"github.com/matthewbaird/insights/internal/store"
	"github.com/matthewbaird/insights/internal/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	ms := store.NewMemoryStore()
	require.NoError(t, seed.Demo(context.Background(), ms, time.Now()))
	svc := analytics.NewService(analytics.Dependencies{
		Config:      analytics.Config{Policy: policy.Default()},
		Portfolio:   ms,
		Comparables: ms,
		Logger:      log,
	})
	srv := httptest.NewServer(NewRouter(Config{Analytics: svc, Logger: log}))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if into != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestDemoPortfolioEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	var fc types.ForecastResult
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/v1/landlords/"+seed.DemoLandlordID+"/forecast?market=true", &fc))
	assert.Len(t, fc.MonthlyForecasts, 12)
	assert.Len(t, fc.Scenarios, 3)
	assert.NotNil(t, fc.MarketFactors)
	assert.Positive(t, fc.Summary.TotalProjectedRevenue)

	var pf types.ForecastResult
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/v1/properties/"+seed.DemoPropertyIDs[0]+"/forecast", &pf))
	assert.Len(t, pf.MonthlyForecasts, 24)

	var analysis types.PortfolioTurnoverAnalysis
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/v1/landlords/"+seed.DemoLandlordID+"/turnover", &analysis))
	assert.Positive(t, analysis.TotalLeases)
	for i := 1; i < len(analysis.Leases); i++ {
		assert.GreaterOrEqual(t, analysis.Leases[i-1].Probability, analysis.Leases[i].Probability)
	}

	var pred types.TurnoverPrediction
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/v1/leases/"+analysis.Leases[0].LeaseID+"/turnover", &pred))
	assert.Len(t, pred.Factors, 7)

	var errBody map[string]string
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/v1/leases/missing/turnover", &errBody))
	assert.Equal(t, "NOT_FOUND", errBody["code"])
	assert.Equal(t, http.StatusBadRequest, get(t, srv.URL+"/v1/landlords/"+seed.DemoLandlordID+"/forecast?horizon=99", &errBody))
	assert.Equal(t, "INVALID_INPUT", errBody["code"])
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{Port: 0, Analytics: analytics.NewService(analytics.Dependencies{}), Logger: log})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not shut down")
	}
}
