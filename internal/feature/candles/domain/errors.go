// Package domain defines domain-level errors for the candles feature.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCompleteDate indicates that no date in the series reaches the
	// freshness threshold, so the fetch range cannot be derived.
	ErrNoCompleteDate = errors.New("no complete date in series")

	// ErrRunInProgress is returned when another pipeline run holds the lock.
	ErrRunInProgress = errors.New("pipeline run already in progress")

	// ErrInvalidQuery wraps validation failures of an aggregate query.
	ErrInvalidQuery = errors.New("invalid aggregate query")

	// ErrNoData indicates that a query matched no group.
	ErrNoData = errors.New("no data for query")
)

// MalformedFilenameError reports a bulk file whose name carries no valid date.
// The whole file is skipped.
type MalformedFilenameError struct {
	Name string
}

func (e *MalformedFilenameError) Error() string {
	return fmt.Sprintf("malformed bulk file name %q", e.Name)
}

// ParseError reports a row (or file) whose content could not be parsed.
type ParseError struct {
	Source string
	Row    int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("parse %s row %d field %q value %q: %v", e.Source, e.Row, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchError reports that an upstream source could not be read at all.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
