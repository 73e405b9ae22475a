package analysis

import (
	"errors"
	"strings"
)

var (
	ErrMissingCredentials = errors.New("ai credentials not configured")
	ErrTransportFailure   = errors.New("ai transport failure")
	ErrMalformedOutput    = errors.New("ai output malformed")
	ErrQuotaExceeded      = errors.New("ai quota exceeded")
)

// FailureKind is the class an engine failure falls into.
type FailureKind string

const (
	FailureMissingCredentials FailureKind = "missing_credentials"
	FailureTransport          FailureKind = "transport_failure"
	FailureMalformedOutput    FailureKind = "malformed_output"
)

// Classify maps an engine error onto its failure class. Unknown errors count as transport failures.
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return FailureMissingCredentials
	case errors.Is(err, ErrMalformedOutput):
		return FailureMalformedOutput
	default:
		return FailureTransport
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every offending field of a request.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field was reported, so callers never hold a typed nil error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid analysis request: " + strings.Join(parts, "; ")
}
