// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// Operator is an account allowed to trigger pipeline runs and rebuilds.
type Operator struct {
	ID uint

	// Email is unique across operators.
	Email string

	// PasswordHash is a bcrypt hash, never plaintext.
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}
