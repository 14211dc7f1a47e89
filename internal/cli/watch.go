package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clipcheck/clipcheck/internal/pipeline"
)

var (
	watchOutputDir string
	settleInterval time.Duration
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and assess new videos as they arrive",
	Long: `Watch monitors a directory and runs the pipeline on every video file
dropped into it. Reports are written next to the videos, or into
--output-dir when set. Videos are processed one at a time, in arrival
order.

Example:
  clipcheck watch ./incoming
  clipcheck watch ./incoming --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchOutputDir, "output-dir", "", "report directory (default: next to the video)")
	watchCmd.Flags().DurationVar(&settleInterval, "settle", 2*time.Second, "time a file must stay unchanged before processing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log).With().Str("component", "watch").Logger()

	if watchOutputDir != "" {
		if err := os.MkdirAll(watchOutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	log.Info().Str("dir", dir).Msg("watching for videos")

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watcher error")
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !videoExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			handleArrival(ctx, p, log, event.Name)
		}
	}
}

// handleArrival waits for the file to finish landing, then runs the
// pipeline and writes the report. Already-reported videos are skipped, so
// repeated Write events do not rerun the pipeline.
func handleArrival(ctx context.Context, p *pipeline.Pipeline, log zerolog.Logger, videoPath string) {
	reportPath := watchReportPath(videoPath)
	if _, err := os.Stat(reportPath); err == nil {
		return
	}

	if err := waitForSettle(ctx, videoPath); err != nil {
		log.Warn().Err(err).Str("video", videoPath).Msg("file never settled")
		return
	}

	log.Info().Str("video", videoPath).Msg("processing")
	result, err := p.Run(ctx, videoPath)
	if err != nil {
		log.Error().Err(err).Str("video", videoPath).Msg("assessment failed")
		return
	}

	if err := writeResult(result, reportPath); err != nil {
		log.Error().Err(err).Str("report", reportPath).Msg("write failed")
		return
	}
	log.Info().Str("report", reportPath).Int("claims", len(result.Claims)).Msg("report written")
}

// waitForSettle polls the file size until it stops changing
func waitForSettle(ctx context.Context, path string) error {
	var lastSize int64 = -1
	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settleInterval):
		}
	}
}

func watchReportPath(videoPath string) string {
	name := reportName(videoPath)
	if watchOutputDir != "" {
		return filepath.Join(watchOutputDir, name)
	}
	return filepath.Join(filepath.Dir(videoPath), name)
}
