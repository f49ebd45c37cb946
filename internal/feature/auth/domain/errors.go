// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

var (
	// ErrOperatorExists is returned when an operator with the same email is already registered.
	ErrOperatorExists = errors.New("operator with this email already exists")

	// ErrOperatorNotFound indicates that no operator matched the lookup.
	ErrOperatorNotFound = errors.New("operator not found")

	// ErrInvalidCredentials is the single login failure surfaced to callers.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a password is shorter than the minimum length.
	ErrWeakPassword = errors.New("password too short")
)
