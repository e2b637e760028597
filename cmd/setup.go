package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli"

	"github.com/slighter12/tres-devtools-go/assets"
	"github.com/slighter12/tres-devtools-go/config"
	"github.com/slighter12/tres-devtools-go/devtools"
	"github.com/slighter12/tres-devtools-go/logger"
	"github.com/slighter12/tres-devtools-go/telemetry"
)

// loadConfig reads --config when given, otherwise the resolved default path,
// creating it with defaults on first run.
func loadConfig(ctx *cli.Context) (*config.Config, string, error) {
	path := ctx.GlobalString("config")
	if path == "" {
		resolved, err := config.ResolveConfigPath()
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		if err := config.EnsureDefaultConfig(resolved); err != nil {
			return nil, "", err
		}
		path = resolved
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, path, nil
}

// logLevel resolves the configured level; -v and -vv raise verbosity.
func logLevel(ctx *cli.Context, cfg *config.Config) slog.Level {
	return verbosityFloor(logger.GetLevelFromString(cfg.Logging.Level), ctx.GlobalBool("v"), ctx.GlobalBool("vv"))
}

func verbosityFloor(level slog.Level, verbose, veryVerbose bool) slog.Level {
	if veryVerbose {
		return slog.LevelDebug
	}
	if verbose && level > slog.LevelInfo {
		return slog.LevelInfo
	}
	return level
}

// setupLogging applies the configured logger.
func setupLogging(ctx *cli.Context, cfg *config.Config, withFile bool) error {
	level := logLevel(ctx, cfg)

	var paths []string
	if withFile {
		paths = append(paths, cfg.Logging.Path)
	}
	if err := logger.Init(level, logger.Format(cfg.Logging.Format), paths...); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// storeOptions maps configuration onto the devtools store.
func storeOptions(cfg *config.Config, exporter *telemetry.Exporter) devtools.Options {
	return devtools.Options{
		Capacity:    cfg.Telemetry.Capacity,
		LogInterval: time.Duration(cfg.Telemetry.LogIntervalMS) * time.Millisecond,
		Extractor: &assets.Extractor{Previewer: assets.Previewer{
			MaxEdge:  cfg.Assets.PreviewMaxEdge,
			Disabled: !cfg.Assets.CapturePreviews,
		}},
		Exporter: exporter,
	}
}
