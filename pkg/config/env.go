// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables read by ApplyEnvironmentOverrides.
const (
	EnvDeltaTime       = "GRAVITYWELL_DT"
	EnvTicks           = "GRAVITYWELL_TICKS"
	EnvGravityStrength = "GRAVITYWELL_GRAVITY_STRENGTH"
	EnvWorldSize       = "GRAVITYWELL_WORLD_SIZE"
	EnvRealTime        = "GRAVITYWELL_REALTIME"
	EnvScenario        = "GRAVITYWELL_SCENARIO"
	EnvReloadDebounce  = "GRAVITYWELL_RELOAD_DEBOUNCE"
	EnvReportInterval  = "GRAVITYWELL_REPORT_INTERVAL"
)

// DefaultReloadDebounce is how long the tuning file must stay unchanged
// before the watcher reloads it.
const DefaultReloadDebounce = 100 * time.Millisecond

// ApplyEnvironmentOverrides overrides config values from environment
// variables. Set variables that fail to parse are reported as errors.
func ApplyEnvironmentOverrides(config *TuningConfig) error {
	if v, ok := os.LookupEnv(EnvDeltaTime); ok {
		dt, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDeltaTime, err)
		}
		config.Simulation.DeltaTime = dt
	}

	if v, ok := os.LookupEnv(EnvTicks); ok {
		ticks, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTicks, err)
		}
		config.Simulation.Ticks = ticks
	}

	if v, ok := os.LookupEnv(EnvGravityStrength); ok {
		strength, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvGravityStrength, err)
		}
		for i := range config.Planets {
			config.Planets[i].Strength = strength
		}
	}

	config.WorldSize = getEnvAsFloatOrDefault(EnvWorldSize, config.WorldSize)
	config.Simulation.RealTime = getEnvAsBoolOrDefault(EnvRealTime, config.Simulation.RealTime)
	config.Simulation.Scenario = getEnvOrDefault(EnvScenario, config.Simulation.Scenario)
	config.Simulation.ReportInterval = getEnvAsIntOrDefault(EnvReportInterval, config.Simulation.ReportInterval)

	return nil
}

// ReloadDebounce returns the watcher debounce from the environment.
func ReloadDebounce() time.Duration {
	return getEnvAsDurationOrDefault(EnvReloadDebounce, DefaultReloadDebounce)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
