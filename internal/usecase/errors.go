package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrValidation            = errors.New("validation failed")
	ErrTransport             = errors.New("transport failure")
	ErrConflict              = errors.New("conflict")
	ErrSourceParsing         = errors.New("source parsing failed")
	ErrRunInProgress         = errors.New("run already in progress")
)

// ValidationError names every required field missing from a candidate record.
type ValidationError struct {
	Entity string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s missing required fields: %s", ErrValidation, e.Entity, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// TransportError is a failed call to a remote system.
type TransportError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, ": status=%d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() []error {
	out := []error{ErrTransport}
	if e.StatusCode == http.StatusConflict {
		out = append(out, ErrConflict)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// SourceError wraps a malformed row, page or feed entry.
func SourceError(source string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceParsing, source, err)
}
