package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/slighter12/tres-devtools-go/devtools"
	"github.com/slighter12/tres-devtools-go/logger"
	"github.com/slighter12/tres-devtools-go/transport/stdio"
)

// Replay feeds recorded JSONL sessions through a fresh store and prints the
// resulting scene, telemetry and asset catalogue.
func Replay(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("missing recorded session file")
	}

	cfg, _, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := setupLogging(ctx, cfg, false); err != nil {
		return err
	}

	out := ctx.App.Writer
	if out == nil {
		out = os.Stdout
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sessionFile := ctx.Args().Get(idx)
		state, stats, err := ReplayFile(sessionFile, storeOptions(cfg, nil))
		if err != nil {
			return err
		}

		if ctx.Bool("json") {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(state); err != nil {
				return fmt.Errorf("encode replay state: %w", err)
			}
			continue
		}
		fmt.Fprintf(out, "session: %s\n", sessionFile)
		WriteReplaySummary(out, state, stats)
	}
	return nil
}

// ReplayFile publishes every message in path into a store built from opts
// and returns its final state.
func ReplayFile(path string, opts devtools.Options) (devtools.State, stdio.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return devtools.State{}, stdio.Stats{}, fmt.Errorf("open session: %w", err)
	}
	defer f.Close()

	hub := devtools.NewHub(devtools.NewMessenger(), opts)
	handle := hub.Acquire()
	defer handle.Release()

	logger.Info("Replaying session", "path", path)
	stats, err := stdio.NewBridge(hub.Messenger()).Run(context.Background(), f)
	if err != nil {
		return devtools.State{}, stats, err
	}
	return handle.Store().Snapshot(), stats, nil
}

// WriteReplaySummary renders the replay outcome as tables.
func WriteReplaySummary(w io.Writer, state devtools.State, stats stdio.Stats) {
	summary := tablewriter.NewWriter(w)
	summary.SetAutoFormatHeaders(false)
	summary.SetAutoWrapText(false)
	summary.SetHeader([]string{"Metric", "Value"})
	summary.AppendBulk([][]string{
		{"Messages", fmt.Sprintf("%d published, %d skipped", stats.Published, stats.Skipped)},
		{"Version", strconv.FormatUint(state.Version, 10)},
		{"Objects", strconv.Itoa(state.Scene.Objects)},
		{"Rebuilds", strconv.FormatUint(state.Scene.Rebuilds, 10)},
		{"Assets", strconv.Itoa(len(state.Scene.Assets))},
		{"FPS", fmt.Sprintf("%.1f (avg %.1f)", state.FPS.Value, state.FPS.Average)},
		{"Memory MB", fmt.Sprintf("%.1f (avg %.1f, max %.1f)", state.Memory.Value, state.Memory.Average, state.Memory.Max)},
		{"Draw calls", strconv.Itoa(state.Renderer.Info.Render.Calls)},
		{"Triangles", strconv.Itoa(state.Renderer.Info.Render.Triangles)},
		{"Programs", strconv.Itoa(len(state.Renderer.Info.Programs))},
	})
	summary.Render()

	if len(state.Scene.Assets) == 0 {
		return
	}
	catalogue := tablewriter.NewWriter(w)
	catalogue.SetAutoFormatHeaders(false)
	catalogue.SetAutoWrapText(false)
	catalogue.SetHeader([]string{"Kind", "Name", "Size KB", "Dimensions", "Format", "Source"})
	for _, record := range state.Scene.Assets {
		catalogue.Append([]string{
			string(record.Kind),
			record.Name,
			strconv.Itoa(record.SizeKB),
			record.Dimensions,
			record.Format,
			record.Source,
		})
	}
	catalogue.SetFooter([]string{"", "", "", "", "TOTAL", strconv.Itoa(len(state.Scene.Assets))})
	catalogue.Render()
}
