package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure
type Kind string

const (
	// KindInput indicates a caller mistake (no file, empty text)
	KindInput Kind = "input"
	// KindExtraction indicates the audio extraction tool failed
	KindExtraction Kind = "extraction"
	// KindService indicates a transport/auth/rate-limit failure from an external model service
	KindService Kind = "service"
	// KindMalformed indicates a model response that is not syntactically valid JSON
	KindMalformed Kind = "malformed_output"
	// KindInternal covers everything else
	KindInternal Kind = "internal"
)

// Error carries the failure kind plus the operation that raised it.
// Field-level omissions in model output are NOT errors; they are defaulted
// by the normalizer. Only syntax-level corruption becomes KindMalformed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and operation name
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Input reports a caller mistake
func Input(op, msg string) error {
	return &Error{Kind: KindInput, Op: op, Err: errors.New(msg)}
}

// KindOf returns the kind of err, or KindInternal if err carries none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to a response status. Caller mistakes get 400,
// every stage failure is a uniform 500.
func HTTPStatus(err error) int {
	if IsKind(err, KindInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
