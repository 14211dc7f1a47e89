package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipcheck/clipcheck/internal/pipeline"
	"github.com/clipcheck/clipcheck/internal/worker"
)

var (
	batchWorkers int
	outputDir    string
	batchTimeout time.Duration
)

// videoExtensions are the container formats picked up by batch and watch
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".m4v":  true,
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Assess every video in a directory",
	Long: `Batch runs the pipeline over all videos in a directory:
- Collect video files by extension (mp4, mov, mkv, webm, avi, m4v)
- Process them with a configurable number of workers
- Write one JSON report per video into the output directory

A failed video does not stop the batch; it is reported at the end.

Example:
  clipcheck batch ./clips
  clipcheck batch ./clips --workers 4 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 2, "number of concurrent videos")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./clipcheck-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	videos, err := collectVideos(dir)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		return fmt.Errorf("no video files found in %s", dir)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "⚙️  Processing %d videos with %d workers...\n", len(videos), batchWorkers)

	type outcome struct {
		video string
		path  string
		err   error
	}
	outcomes := make([]outcome, len(videos))

	// Per-video failures are recorded, not returned, so one bad clip
	// cannot cancel the rest of the batch.
	var mu sync.Mutex
	pool := worker.NewPool(batchWorkers)
	_ = pool.Run(ctx, len(videos), func(ctx context.Context, i int) error {
		video := videos[i]
		result, err := p.Run(ctx, video)

		o := outcome{video: video, err: err}
		if err == nil {
			o.path = filepath.Join(outputDir, reportName(video))
			o.err = writeResult(result, o.path)
		}

		mu.Lock()
		outcomes[i] = o
		mu.Unlock()
		return nil
	})

	successCount := 0
	failureCount := 0
	for _, o := range outcomes {
		if o.err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", o.video, o.err)
			continue
		}
		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s -> %s\n", o.video, o.path)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d videos\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)

	if failureCount > 0 {
		return fmt.Errorf("%d of %d videos failed", failureCount, len(outcomes))
	}
	return nil
}

// collectVideos lists video files directly under dir, sorted by name
func collectVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var videos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			videos = append(videos, filepath.Join(dir, entry.Name()))
		}
	}
	return videos, nil
}

// reportName derives the report filename from the video filename
func reportName(videoPath string) string {
	base := filepath.Base(videoPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}
