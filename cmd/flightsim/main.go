// cmd/flightsim/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-gravitywell/pkg/config"
	"github.com/opd-ai/go-gravitywell/pkg/engine"
	"github.com/opd-ai/go-gravitywell/pkg/event"
	"github.com/opd-ai/go-gravitywell/pkg/logging"
	"github.com/opd-ai/go-gravitywell/pkg/scenario"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout))
}

// run parses args, builds the world and runs the scenario. It returns the
// process exit code.
func run(ctx context.Context, args []string, out io.Writer) int {
	fs := flag.NewFlagSet("flightsim", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "gravitywell.yaml", "Path to tuning file")
	createDefault := fs.Bool("default", false, "Write the default tuning file and exit")
	template := fs.String("template", "", "System template to apply (single_planet, binary_planets, asteroid_belt)")
	scenarioRef := fs.String("scenario", "", "Built-in scenario name or path to a .tengo script")
	ticks := fs.Int("ticks", -1, "Number of ticks to run (default from tuning file)")
	watch := fs.Bool("watch", false, "Reload the tuning file when it changes")
	logLevel := fs.String("log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	logFormat := fs.String("log-format", "", "Log format (json or text)")
	maxMemory := fs.Int64("max-memory-mb", 1024, "Heap limit for the memory health check (0 disables it)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := newLogger(out, *logLevel, *logFormat)

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			return 1
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return 0
	}

	cfg, err := config.LoadConfigWithTemplate(*configPath, *template)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		return 1
	}
	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		return 1
	}
	if *ticks >= 0 {
		cfg.Simulation.Ticks = *ticks
	}
	if *scenarioRef != "" {
		cfg.Simulation.Scenario = *scenarioRef
	}

	world, err := engine.NewWorld(cfg, logger, event.NewEventBus())
	if err != nil {
		logger.Error(ctx, "Failed to build world", err)
		return 1
	}
	ctx = logging.WithCorrelationID(ctx, logging.GetCorrelationID(world.Context()))

	script, err := scenario.Open(scenarioName(cfg))
	if err != nil {
		logger.Error(ctx, "Failed to load scenario", err,
			"scenario", cfg.Simulation.Scenario,
		)
		return 1
	}

	sim := &Simulation{
		World:  world,
		Script: script,
		Logger: logger,
		Health: newHealthChecker(world, *maxMemory),
	}

	if *watch {
		watcher, err := config.NewWatcher(*configPath, config.ReloadDebounce())
		if err != nil {
			logger.Error(ctx, "Failed to watch configuration", err,
				"config_path", *configPath,
			)
			return 1
		}
		defer watcher.Close()
		sim.Reloads = watcher.Configs
		sim.ReloadErrors = watcher.Errors
		logger.Info(ctx, "Watching configuration", "config_path", *configPath)
	}

	summary, err := sim.Run(ctx, cfg.Simulation.Ticks, cfg.Simulation.RealTime)
	if err != nil {
		logger.Error(ctx, "Simulation failed", err,
			"tick", world.CurrentTick,
		)
		return 1
	}

	logger.Info(ctx, "Simulation finished",
		"ticks", summary.Ticks,
		"elapsed", summary.Elapsed,
		"landings", summary.Landings,
		"takeoffs", summary.TakeOffs,
		"reloads", summary.Reloads,
		"unhealthy_reports", summary.Unhealthy,
	)
	return 0
}

func newLogger(out io.Writer, level, format string) *logging.Logger {
	if level == "" {
		level = os.Getenv(logging.LevelEnvVar)
	}
	if format == "" {
		format = os.Getenv(logging.FormatEnvVar)
	}
	return logging.NewLoggerWithWriter(out, logging.ParseLevel(level), format)
}

func scenarioName(cfg *config.TuningConfig) string {
	if cfg.Simulation.Scenario == "" {
		return "idle"
	}
	return cfg.Simulation.Scenario
}
