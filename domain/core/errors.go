package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrMalformedInput    = errors.New("malformed input")
	ErrAnalyteNotFound   = errors.New("analyte not found")
)

// SourceUnavailableError reports that the byte source behind a dataset could not be read.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrSourceUnavailable, e.Source)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

// MalformedInputError reports a header or row that violates the table schema.
// Row is the 1-based data row index (0 for header problems).
type MalformedInputError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	msg := ErrMalformedInput.Error()
	if e.Row > 0 {
		msg += fmt.Sprintf(": row %d", e.Row)
	} else {
		msg += ": header"
	}
	if e.Column != "" {
		msg += fmt.Sprintf(": column %q", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(": value %q", e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// Error constructors with context
func NewSourceUnavailableError(source string, err error) error {
	return &SourceUnavailableError{Source: source, Err: err}
}

func NewHeaderError(column, reason string) error {
	return &MalformedInputError{Column: column, Reason: reason}
}

func NewRowError(row int, column, value, reason string) error {
	return &MalformedInputError{Row: row, Column: column, Value: value, Reason: reason}
}

func NewAnalyteNotFoundError(analyte string) error {
	return fmt.Errorf("%w: %q", ErrAnalyteNotFound, analyte)
}

// Error checking helpers
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrAnalyteNotFound)
}
