package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/slighter12/tres-devtools-go/config"
	"github.com/slighter12/tres-devtools-go/devtools"
	"github.com/slighter12/tres-devtools-go/logger"
	"github.com/slighter12/tres-devtools-go/telemetry"
	"github.com/slighter12/tres-devtools-go/transport/http"
	"github.com/slighter12/tres-devtools-go/transport/stdio"
)

// Serve runs the observer HTTP server, optionally fed by host messages on stdin.
func Serve(ctx *cli.Context) error {
	cfg, cfgPath, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.IsSet("port") {
		cfg.Server.Port = ctx.Int("port")
	}
	if ctx.IsSet("host") {
		cfg.Server.Host = ctx.String("host")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogging(ctx, cfg, true); err != nil {
		return err
	}
	defer logger.Default().Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	messenger := devtools.NewMessenger()
	hub := devtools.NewHub(messenger, storeOptions(cfg, telemetry.NewExporter()))
	server := http.NewServer(cfg, hub)

	if ctx.Bool("stdin") {
		go func() {
			if err := stdio.NewBridge(messenger).Start(runCtx); err != nil {
				logger.Error("Stdio bridge failed", "error", err)
			}
		}()
	}

	if ctx.Bool("watch") {
		go func() {
			err := config.Watch(runCtx, cfgPath, func(next *config.Config, err error) {
				if err != nil {
					return
				}
				// Only logging settings apply live; the rest needs a restart.
				level := logLevel(ctx, next)
				logger.Default().SetLevel(level)
				logger.Default().SetFormat(logger.Format(next.Logging.Format))
				logger.Info("Logging reconfigured", "level", level.String(), "format", next.Logging.Format)
			})
			if err != nil {
				logger.Warn("Config watch stopped", "path", cfgPath, "error", err)
			}
		}()
	}

	logger.Info("Starting devtools server", "config_path", cfgPath, "stdin", ctx.Bool("stdin"))
	if err := server.Start(runCtx); err != nil {
		logger.Error("Server error", "error", err)
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}
