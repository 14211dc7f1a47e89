package model

// Result is the terminal artifact of one pipeline run. Claims and Results
// are index-aligned: Results[i] is the verdict for Claims[i]. Both are
// present in full or not at all; a run that fails partway returns no Result.
type Result struct {
	OK      bool      `json:"ok"`
	Text    string    `json:"text"`
	Claims  []string  `json:"claims"`
	Results []Verdict `json:"results"`
	Note    string    `json:"note,omitempty"` // Set only on the no-speech short-circuit
}

// NoSpeechNote is the note attached when transcription yields no text
const NoSpeechNote = "No speech detected"

// NoSpeech builds the short-circuit result for an empty transcript
func NoSpeech(text string) *Result {
	return &Result{
		OK:      true,
		Text:    text,
		Claims:  []string{},
		Results: []Verdict{},
		Note:    NoSpeechNote,
	}
}
