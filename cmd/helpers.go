package cmd

import (
	"github.com/mj1618/uisync/internal/config"
	"github.com/mj1618/uisync/internal/driver"
	"github.com/mj1618/uisync/internal/logging"
	"github.com/mj1618/uisync/internal/output"
	"github.com/mj1618/uisync/internal/platform"
	_ "github.com/mj1618/uisync/internal/platform/scene"
	"github.com/mj1618/uisync/internal/sleeper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// testClock, when set, replaces the system clock for the backend and the
// driver and disables the background sampler.
var testClock sleeper.Clock

// loadConfig layers the config file and explicitly set flags over the
// defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	flags := cmd.Flags()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if flags.Changed("backend") {
		cfg.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("scene") {
		cfg.Scene, _ = flags.GetString("scene")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-dev") {
		cfg.Log.Development, _ = flags.GetBool("log-dev")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newDriver builds the logger, provider and driver for a command. The
// caller must release both with closeDriver.
func newDriver(cmd *cobra.Command) (*driver.Driver, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With(zap.String("cmd", cmd.Name()))

	provider, err := platform.NewProvider(cfg.Backend, platform.Options{Source: cfg.Scene, Clock: testClock})
	if err != nil {
		return nil, nil, err
	}

	opts := []driver.Option{driver.WithLogger(logger)}
	if testClock != nil {
		opts = append(opts, driver.WithClock(testClock), driver.WithoutSampler())
	}
	d, err := driver.New(provider, cfg, opts...)
	if err != nil {
		if provider.Close != nil {
			if cerr := provider.Close(); cerr != nil {
				logger.Warn("close backend failed", zap.String("backend", provider.Name), zap.Error(cerr))
			}
		}
		_ = logger.Sync()
		return nil, nil, err
	}
	return d, logger, nil
}

// closeDriver releases the driver and flushes the command's logger.
func closeDriver(d *driver.Driver, logger *zap.Logger) {
	if err := d.Close(); err != nil {
		logger.Warn("close failed", zap.Error(err))
	}
	_ = logger.Sync()
}

// printResult writes v to the command's output in the selected format.
func printResult(cmd *cobra.Command, v interface{}) error {
	return output.Fprint(cmd.OutOrStdout(), output.OutputFormat, v)
}

// scrollFlag resolves --no-scroll into a tri-state for queries.
func scrollFlag(cmd *cobra.Command) *bool {
	if !cmd.Flags().Changed("no-scroll") {
		return nil
	}
	off, _ := cmd.Flags().GetBool("no-scroll")
	scroll := !off
	return &scroll
}
