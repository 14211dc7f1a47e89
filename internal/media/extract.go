// Package media wraps the external audio extraction tool. The tool is opaque
// to the rest of the system: a video container goes in, a mono 16 kHz 16-bit
// PCM wav comes out, or extraction fails for the whole request.
package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/clipcheck/clipcheck/internal/errs"
	"github.com/clipcheck/clipcheck/internal/model"
)

// Extractor converts video containers to speech-recognition-ready audio
type Extractor struct {
	ffmpeg  string
	ffprobe string
	exec    Executor
}

// NewExtractor creates an extractor using the configured tool paths
func NewExtractor(cfg model.MediaConfig, exec Executor) *Extractor {
	return &Extractor{
		ffmpeg:  cfg.FFmpegPath,
		ffprobe: cfg.FFprobePath,
		exec:    exec,
	}
}

// ExtractAudio writes <video>.wav next to the input and returns its path.
// Whisper-family models want mono 16 kHz PCM, so that is the only output
// format produced.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	audioPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".wav"

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		audioPath,
	}

	if _, err := e.exec.Execute(ctx, e.ffmpeg, args...); err != nil {
		return "", errs.E(errs.KindExtraction, "media.extract", fmt.Errorf("extract audio: %w", err))
	}

	return audioPath, nil
}

// Duration probes the media duration in seconds
func (e *Extractor) Duration(ctx context.Context, path string) (float64, error) {
	out, err := e.exec.Execute(ctx, e.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, errs.E(errs.KindExtraction, "media.probe", err)
	}

	var dur float64
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%f", &dur); err != nil {
		return 0, errs.E(errs.KindExtraction, "media.probe", fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err))
	}
	return dur, nil
}
