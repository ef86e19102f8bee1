package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLine is wrapped by every FormatError.
	ErrMalformedLine = errors.New("malformed legacy line")
	// ErrClassification is wrapped by every ClassificationError.
	ErrClassification = errors.New("sources must be one legacy and one normalized dataset")
)

// FormatError reports a legacy record with too few fields.
type FormatError struct {
	Source string
	Text   string
	Fields int
	Want   int

	// Line is 1-based and counts the raw input, marker lines included.
	Line int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: %v: got %d fields, need at least %d: %q",
		e.Source, e.Line, ErrMalformedLine, e.Fields, e.Want, e.Text)
}

func (e *FormatError) Unwrap() error {
	return ErrMalformedLine
}

// ClassificationError reports a source list that does not hold exactly one
// dataset of each format.
type ClassificationError struct {
	Legacy     int
	Normalized int

	// Unknown is set when a source carried an unrecognised format tag.
	Unknown string
}

func (e *ClassificationError) Error() string {
	if e.Unknown != "" {
		return fmt.Sprintf("%v: unknown format for %q", ErrClassification, e.Unknown)
	}
	return fmt.Sprintf("%v: got %d legacy and %d normalized", ErrClassification, e.Legacy, e.Normalized)
}

func (e *ClassificationError) Unwrap() error {
	return ErrClassification
}
