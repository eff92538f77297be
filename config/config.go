// Package config loads the runtime-configurable knobs listed in spec §6:
// minimum compiled-in log level, telemetry sample interval, HW watchdog
// timeout, and channel buffer sizes. The teacher's root module depends on
// github.com/BurntSushi/toml for exactly this kind of small settings file.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every knob spec §6 names as runtime-configurable, each
// compile-time-defaulted per Default().
type Config struct {
	// MinLogLevel is the inclusive floor below which tokenlog.Log compiles
	// to a no-op check (see tokenlog.Level).
	MinLogLevel string `toml:"min_log_level"`

	// TelemetryIntervalMS is the telemetry sample cadence in milliseconds.
	TelemetryIntervalMS int `toml:"telemetry_interval_ms"`

	// WatchdogHWTimeoutMS is the hardware watchdog timeout in milliseconds;
	// must exceed watchdog.MonitorPeriod.
	WatchdogHWTimeoutMS int `toml:"watchdog_hw_timeout_ms"`

	// LogChannelBytes is channel 1's fixed buffer size.
	LogChannelBytes int `toml:"log_channel_bytes"`

	// TelemetryChannelBytes is channel 2's fixed buffer size.
	TelemetryChannelBytes int `toml:"telemetry_channel_bytes"`
}

// Default returns the spec's stated defaults: Info level, 500ms telemetry,
// 8000ms HW watchdog timeout, 2048B log buffer, 512B telemetry buffer.
func Default() Config {
	return Config{
		MinLogLevel:           "info",
		TelemetryIntervalMS:   500,
		WatchdogHWTimeoutMS:   8000,
		LogChannelBytes:       2048,
		TelemetryChannelBytes: 512,
	}
}

// Load decodes a TOML document into a copy of Default(), so any field the
// document omits keeps its compiled-in default.
func Load(data []byte) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the spec's cross-field invariant (§4.6): the HW
// watchdog timeout must exceed the cooperative monitor period.
func (c Config) Validate() error {
	const monitorPeriodMS = 5000
	if c.WatchdogHWTimeoutMS <= monitorPeriodMS {
		return fmt.Errorf("config: watchdog_hw_timeout_ms (%d) must exceed the monitor period (%dms)", c.WatchdogHWTimeoutMS, monitorPeriodMS)
	}
	if c.TelemetryIntervalMS <= 0 {
		return fmt.Errorf("config: telemetry_interval_ms must be positive, got %d", c.TelemetryIntervalMS)
	}
	if c.LogChannelBytes <= 0 || c.TelemetryChannelBytes <= 0 {
		return fmt.Errorf("config: channel buffer sizes must be positive")
	}
	return nil
}

// TelemetryInterval is TelemetryIntervalMS as a time.Duration.
func (c Config) TelemetryInterval() time.Duration {
	return time.Duration(c.TelemetryIntervalMS) * time.Millisecond
}

// WatchdogHWTimeout is WatchdogHWTimeoutMS as a time.Duration.
func (c Config) WatchdogHWTimeout() time.Duration {
	return time.Duration(c.WatchdogHWTimeoutMS) * time.Millisecond
}
