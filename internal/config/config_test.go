package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 10.0, cfg.MonthlyCapHours)
	require.Equal(t, 3, cfg.RescheduleNoticeDays)
	require.Equal(t, 20, cfg.ResultLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MONTHLY_CAP_HOURS", "12.5")
	t.Setenv("RESCHEDULE_NOTICE_DAYS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, 12.5, cfg.MonthlyCapHours)
	require.Equal(t, 5, cfg.RescheduleNoticeDays)
}

func TestLoadBadNumberFallsBack(t *testing.T) {
	t.Setenv("RESULT_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 20, cfg.ResultLimit)
}
