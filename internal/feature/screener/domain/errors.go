// Package domain defines domain-level errors for the screener feature.
package domain

import "errors"

var (
	// ErrSnapshotNotFound is returned when no snapshot exists for the requested date.
	ErrSnapshotNotFound = errors.New("screener snapshot not found")

	// ErrInvalidDate is returned for a date that is not DDMMYYYY.
	ErrInvalidDate = errors.New("invalid snapshot date")
)
