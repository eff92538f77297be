package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 500, c.TelemetryIntervalMS)
	assert.Equal(t, 8000, c.WatchdogHWTimeoutMS)
}

func TestLoad_PartialOverride(t *testing.T) {
	c, err := Load([]byte(`min_log_level = "debug"`))
	require.NoError(t, err)
	assert.Equal(t, "debug", c.MinLogLevel)
	// untouched fields keep their default
	assert.Equal(t, 2048, c.LogChannelBytes)
}

func TestLoad_RejectsTimeoutBelowMonitorPeriod(t *testing.T) {
	_, err := Load([]byte(`watchdog_hw_timeout_ms = 4000`))
	assert.Error(t, err)
}
