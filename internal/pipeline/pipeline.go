// Package pipeline orchestrates the end-to-end run: extract audio, transcribe,
// extract claims, verify each claim in order, assemble one result. It owns the
// single failure-propagation contract for the whole request: any stage error
// unwinds here, partial verdicts are discarded, and the caller gets exactly
// one error.
package pipeline

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clipcheck/clipcheck/internal/extract"
	"github.com/clipcheck/clipcheck/internal/llm"
	"github.com/clipcheck/clipcheck/internal/media"
	"github.com/clipcheck/clipcheck/internal/model"
	"github.com/clipcheck/clipcheck/internal/transcribe"
	"github.com/clipcheck/clipcheck/internal/verify"
)

// AudioExtractor converts a stored video into a request-scoped audio asset
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
}

// Transcriber recognizes speech in an audio asset
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// ClaimExtractor produces the ordered claim list for a transcript
type ClaimExtractor interface {
	Extract(ctx context.Context, transcript string) ([]string, error)
}

// ClaimVerifier produces verdicts index-aligned with the claim list
type ClaimVerifier interface {
	VerifyAll(ctx context.Context, claims []string) ([]model.Verdict, error)
}

// Pipeline composes the stages. The struct holds no per-run state; every
// Run owns its transcript, claims, and verdicts exclusively.
type Pipeline struct {
	audio      AudioExtractor
	transcribe Transcriber
	claims     ClaimExtractor
	verify     ClaimVerifier
	log        zerolog.Logger
}

// New wires the pipeline from configuration: ffmpeg extraction, the
// speech-to-text provider, and the text-generation provider for both
// claim extraction and verification.
func New(cfg *model.Config, log zerolog.Logger) (*Pipeline, error) {
	llmConfig := llm.ConfigFromModel(cfg.LLM)

	gen, err := llm.NewTextGenerator(llmConfig)
	if err != nil {
		return nil, err
	}
	speech, err := llm.NewSpeechTranscriber(llmConfig)
	if err != nil {
		return nil, err
	}

	extractor := media.NewExtractor(cfg.Media, media.NewExecutor())

	return NewWithStages(
		extractor,
		transcribe.NewTranscriber(speech, cfg.STT.Model),
		extract.NewClaimExtractor(gen),
		verify.NewVerifier(gen, cfg.Verify),
		log,
	), nil
}

// NewWithStages wires the pipeline from explicit stage implementations
func NewWithStages(audio AudioExtractor, t Transcriber, c ClaimExtractor, v ClaimVerifier, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		audio:      audio,
		transcribe: t,
		claims:     c,
		verify:     v,
		log:        log,
	}
}

// Run executes the full pipeline for one stored video. The audio asset is
// owned by this run and removed when the run ends, success or failure.
func (p *Pipeline) Run(ctx context.Context, videoPath string) (*model.Result, error) {
	state := StateIngested
	p.transition(videoPath, state)

	audioPath, err := p.audio.ExtractAudio(ctx, videoPath)
	if err != nil {
		return nil, p.fail(videoPath, state, err)
	}
	defer func() { _ = os.Remove(audioPath) }()
	state = StateAudioExtracted
	p.transition(videoPath, state)

	text, err := p.transcribe.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, p.fail(videoPath, state, err)
	}
	state = StateTranscribed
	p.transition(videoPath, state)

	// An empty transcript is a normal terminal path, not a failure: no
	// claims to extract means nothing to verify.
	if strings.TrimSpace(text) == "" {
		state = StateDone
		p.transition(videoPath, state)
		return model.NoSpeech(text), nil
	}

	claims, err := p.claims.Extract(ctx, text)
	if err != nil {
		return nil, p.fail(videoPath, state, err)
	}
	state = StateClaimsExtracted
	p.transition(videoPath, state)

	results, err := p.verify.VerifyAll(ctx, claims)
	if err != nil {
		return nil, p.fail(videoPath, state, err)
	}
	state = StateVerified
	p.transition(videoPath, state)

	result := &model.Result{
		OK:      true,
		Text:    text,
		Claims:  claims,
		Results: results,
	}

	state = StateDone
	p.transition(videoPath, state)
	return result, nil
}

func (p *Pipeline) transition(video string, state State) {
	p.log.Debug().Str("video", video).Str("state", string(state)).Msg("pipeline transition")
}

func (p *Pipeline) fail(video string, from State, err error) error {
	p.log.Error().Str("video", video).Str("state", string(StateFailed)).Str("from", string(from)).Err(err).Msg("pipeline failed")
	return err
}
