package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	assert.Len(t, p.Forecast.Seasonality, 12)
	assert.Len(t, p.Scenarios, 3)
}

func TestSeasonalityFor(t *testing.T) {
	f := Default().Forecast
	assert.Equal(t, 1.2, f.SeasonalityFor(1))
	assert.Equal(t, 0.9, f.SeasonalityFor(4))
	assert.Equal(t, 1.1, f.SeasonalityFor(12))
	assert.Equal(t, 1.0, f.SeasonalityFor(0))
	assert.Equal(t, 1.0, f.SeasonalityFor(13))
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestLoad_YAMLOverridesKeepDefaults(t *testing.T) {
	path := writeFile(t, "policy.yaml", `
forecast:
  renewal_rate: 0.65
  monthly_maintenance_inflation: 0.003
recommend:
  critical_window_days: 45
`)
	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.65, p.Forecast.RenewalRate)
	assert.Equal(t, 0.003, p.Forecast.MonthlyMaintenanceInflation)
	assert.Equal(t, 45, p.Recommend.CriticalWindowDays)

	// Untouched fields keep their defaults.
	assert.Equal(t, Default().Forecast.Seasonality, p.Forecast.Seasonality)
	assert.Equal(t, Default().Assessment, p.Assessment)
}

func TestLoad_CUEOverrides(t *testing.T) {
	path := writeFile(t, "policy.cue", `
forecast: {
	renewal_rate: 0.9
	occupancy_floor: 0.6
}
`)
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, p.Forecast.RenewalRate)
	assert.Equal(t, 0.6, p.Forecast.OccupancyFloor)
	assert.Equal(t, Default().Forecast.ConfidenceStart, p.Forecast.ConfidenceStart)
}

func TestLoad_RejectsInvalidPolicy(t *testing.T) {
	path := writeFile(t, "policy.yaml", `
forecast:
  seasonality: [1.0, 1.1, 1.2]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seasonality")
}

func TestLoad_RejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "policy.toml", "renewal_rate = 0.5")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate_ProbabilityBounds(t *testing.T) {
	p := Default()
	p.Assessment.HighProbability = 140
	assert.Error(t, p.Validate())

	p = Default()
	p.Assessment.HighRiskBelow = 80
	assert.Error(t, p.Validate())
}

func TestValidate_DuplicateScenario(t *testing.T) {
	p := Default()
	p.Scenarios = append(p.Scenarios, p.Scenarios[0])
	assert.Error(t, p.Validate())
}
