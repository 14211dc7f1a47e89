package pipeline

// State is one step of the run's linear progression. A run moves strictly
// forward; Failed is terminal and reachable from any non-terminal state.
type State string

const (
	StateIngested        State = "ingested"
	StateAudioExtracted  State = "audio_extracted"
	StateTranscribed     State = "transcribed"
	StateClaimsExtracted State = "claims_extracted"
	StateVerified        State = "verified"
	StateDone            State = "done"
	StateFailed          State = "failed"
)
