package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CEREBRAS_API_KEY", "cb-key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "hackjudge", cfg.AppName)
	require.Equal(t, ":5000", cfg.HTTPAddress())
	require.Equal(t, 15*time.Second, cfg.DashboardCacheTTL)
	require.Equal(t, EvaluationModeAsync, cfg.EvaluationMode)
	require.Equal(t, 4, cfg.EvaluationWorkers)
	require.Equal(t, "cerebras", cfg.AIProvider)
	require.Equal(t, "cb-key", cfg.AIAPIKey)
	require.Equal(t, "hackjudge.evaluations", cfg.NATSSubject)
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	t.Setenv("HACKJUDGE_APP_PORT", ":9090")
	t.Setenv("HACKJUDGE_AI_API_KEY", "primary")
	t.Setenv("CEREBRAS_API_KEY", "fallback")
	t.Setenv("HACKJUDGE_EVALUATION_MODE", "INLINE")
	t.Setenv("HACKJUDGE_DASHBOARD_CACHE_TTL", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, "primary", cfg.AIAPIKey)
	require.Equal(t, EvaluationModeInline, cfg.EvaluationMode)
	require.Equal(t, time.Minute, cfg.DashboardCacheTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HACKJUDGE_EVALUATION_MODE", "batch")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("HACKJUDGE_EVALUATION_MODE", "async")
	t.Setenv("HACKJUDGE_AI_TIMEOUT", "soon")
	_, err = Load()
	require.Error(t, err)
}
