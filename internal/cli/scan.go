package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipcheck/clipcheck/internal/model"
	"github.com/clipcheck/clipcheck/internal/pipeline"
	"github.com/clipcheck/clipcheck/internal/score"
)

var (
	outJSON     string
	scanTimeout time.Duration
	withSummary bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <video>",
	Short: "Assess a single local video file",
	Long: `Scan runs the full pipeline on one video:
- Extract the audio track with ffmpeg
- Transcribe the speech
- Extract factual claims from the transcript
- Rate each claim for misinformation risk

Example:
  clipcheck scan clip.mp4
  clipcheck scan clip.mp4 --json report.json
  clipcheck scan clip.mp4 --summary`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&outJSON, "json", "", "write the result to this path instead of stdout")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 5*time.Minute, "overall scan timeout")
	scanCmd.Flags().BoolVar(&withSummary, "summary", false, "print an aggregate risk summary to stderr")
}

func runScan(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("video not found: %s", videoPath)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
	defer cancel()

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if withSummary {
		printSummary(score.NewScorer().Calculate(result.Results))
	}

	return writeResult(result, outJSON)
}

func writeResult(result *model.Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}
	return nil
}

func printSummary(s score.Summary) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Risk index:  %d/100 (%s confidence)\n", s.RiskIndex, s.Confidence)
	fmt.Fprintf(os.Stderr, "  Claims:      %d\n", s.Claims)
	fmt.Fprintf(os.Stderr, "  Flagged:     %d\n", s.Flagged)
	for category, count := range s.Categories {
		fmt.Fprintf(os.Stderr, "    %-12s %d\n", category, count)
	}
	fmt.Fprintf(os.Stderr, "\n")
}
