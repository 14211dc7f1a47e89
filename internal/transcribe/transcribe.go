// Package transcribe is the speech-to-text stage: one service call per audio
// asset. An empty transcript is a legitimate success — the orchestrator
// decides what an empty transcript means, not this stage.
package transcribe

import (
	"context"

	"github.com/clipcheck/clipcheck/internal/llm"
)

// Transcriber invokes the speech-to-text service
type Transcriber struct {
	speech llm.SpeechTranscriber
	model  string
}

// NewTranscriber creates the transcription stage
func NewTranscriber(speech llm.SpeechTranscriber, model string) *Transcriber {
	return &Transcriber{speech: speech, model: model}
}

// Transcribe recognizes speech in the audio file at path. Transport and
// service errors propagate unchanged; they are fatal for the request.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return t.speech.Transcribe(ctx, audioPath, t.model)
}
