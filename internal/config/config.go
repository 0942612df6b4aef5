// Package config holds runtime configuration for the geoconv CLI. Values
// are populated from .geodesy.yaml, GEODESY_* env vars, and CLI flags.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/geodesy/ellipsoid"
)

// TracingConfig mirrors the observability tracing settings.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Config holds all runtime configuration.
type Config struct {
	LeapSecondFile string  `mapstructure:"leap_second_file"`
	Ellipsoid      string  `mapstructure:"ellipsoid"`
	DUT1           float64 `mapstructure:"dut1"`
	LogLevel       string  `mapstructure:"log_level"`
	LogFormat      string  `mapstructure:"log_format"`
	MetricsAddr    string  `mapstructure:"metrics_addr"`

	Tracing TracingConfig `mapstructure:"tracing"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("leap_second_file", "")
	viper.SetDefault("ellipsoid", ellipsoid.GRS80.Name)
	viper.SetDefault("dut1", 0.0)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("metrics_addr", "")
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.service_name", "geodesy")
	viper.SetDefault("tracing.exporter", "stdout")
	viper.SetDefault("tracing.endpoint", "")
	viper.SetDefault("tracing.sample_ratio", 1.0)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, ok := ellipsoid.Get(cfg.Ellipsoid); !ok {
		return Config{}, fmt.Errorf("unknown ellipsoid %q", cfg.Ellipsoid)
	}
	return cfg, nil
}

// SelectedEllipsoid resolves the configured ellipsoid name.
func (c Config) SelectedEllipsoid() ellipsoid.Ellipsoid {
	e, ok := ellipsoid.Get(c.Ellipsoid)
	if !ok {
		return ellipsoid.GRS80
	}
	return e
}
