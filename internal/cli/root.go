// Package cli implements the geoconv command tree: parse raw values, build
// the matching value type, convert, and print.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/geodesy/epoch"
	"github.com/signalsfoundry/geodesy/internal/config"
	"github.com/signalsfoundry/geodesy/internal/logging"
	"github.com/signalsfoundry/geodesy/internal/observability"
	"github.com/signalsfoundry/geodesy/leapsec"
	"github.com/signalsfoundry/geodesy/position"
)

var (
	cfg             config.Config
	log             logging.Logger = logging.Noop()
	collector       *observability.ConversionCollector
	shutdownTracing func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "geoconv",
	Short: "Convert time epochs and positions between registered systems",
	Long: "geoconv reads raw epoch or coordinate values, builds the corresponding " +
		"vectorized value type, and converts it between registered time scales, " +
		"formats, and coordinate systems.",
	SilenceUsage:      true,
	PersistentPreRunE: setupRuntime,
	PersistentPostRun: teardownRuntime,
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .geodesy.yaml)")
	rootCmd.PersistentFlags().String("ellipsoid", "", "reference ellipsoid (GRS80, WGS84, IERS2010)")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".geodesy")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("GEODESY")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// setupRuntime loads config and wires logging, the leap-second table, the
// ΔUT1 model, metrics, and tracing before any subcommand runs.
func setupRuntime(cmd *cobra.Command, args []string) error {
	if flag, _ := cmd.Flags().GetString("ellipsoid"); flag != "" {
		viper.Set("ellipsoid", flag)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log = logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := cmd.Context()
	if cfg.LeapSecondFile != "" {
		f, err := os.Open(cfg.LeapSecondFile)
		if err != nil {
			return fmt.Errorf("open leap second file: %w", err)
		}
		table, err := leapsec.Parse(f, log)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse leap second file: %w", err)
		}
		leapsec.Install(table)
		log.Info(ctx, "leap second table installed",
			logging.String("file", cfg.LeapSecondFile), logging.Int("entries", len(table.Entries())))
	}

	if cfg.DUT1 != 0 {
		offset := cfg.DUT1
		epoch.SetDUT1Model(func(float64) float64 { return offset })
		log.Info(ctx, "constant dut1 model installed", logging.Float64("dut1_seconds", offset))
	}

	collector, err = observability.NewConversionCollector(nil)
	if err != nil {
		return fmt.Errorf("register conversion metrics: %w", err)
	}
	epoch.Scales.SetObserver(collector)
	position.Positions.SetObserver(collector)
	position.PosVels.SetObserver(collector)
	position.PositionDeltas.SetObserver(collector)
	position.PosVelDeltas.SetObserver(collector)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn(ctx, "metrics server stopped", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "metrics server listening", logging.String("addr", cfg.MetricsAddr))
	}

	shutdownTracing, err = observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	return nil
}

func teardownRuntime(cmd *cobra.Command, args []string) {
	observability.ShutdownWithTimeout(cmd.Context(), shutdownTracing, log)
}
