// Package validate rejects caller mistakes before any stage is invoked.
// Everything here yields errs.KindInput: reported immediately, never retried,
// never reaching an external service.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/clipcheck/clipcheck/internal/errs"
	"github.com/clipcheck/clipcheck/internal/model"
)

// MinTextLength is the shortest transcript/snippet worth extracting claims from
const MinTextLength = 3

// Validator checks request inputs and process configuration
type Validator struct {
	check *validator.Validate
}

// New creates a new validator
func New() *Validator {
	return &Validator{check: validator.New()}
}

// Config validates the process configuration against its struct tags
func (v *Validator) Config(cfg *model.Config) error {
	if err := v.check.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.LLM.Provider != "ollama" && cfg.LLM.APIKey == "" {
		return fmt.Errorf("invalid configuration: %s provider requires an API key", cfg.LLM.Provider)
	}
	return nil
}

// Text validates free text submitted for claim extraction
func (v *Validator) Text(text string) error {
	if len(strings.TrimSpace(text)) < MinTextLength {
		return errs.Input("validate.text", "invalid text")
	}
	return nil
}

// Claim validates a single claim submitted for verification
func (v *Validator) Claim(claim string) error {
	if strings.TrimSpace(claim) == "" {
		return errs.Input("validate.claim", "no claim provided")
	}
	return nil
}

// Upload validates an incoming video upload
func (v *Validator) Upload(filename string, size, maxBytes int64) error {
	if filename == "" || size == 0 {
		return errs.Input("validate.upload", "no video uploaded")
	}
	if maxBytes > 0 && size > maxBytes {
		return errs.Input("validate.upload", fmt.Sprintf("video exceeds %d bytes", maxBytes))
	}
	return nil
}
