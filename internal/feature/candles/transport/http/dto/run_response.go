package dto

import "time"

// Run is one pipeline run in the API response.
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Incoming   int       `json:"incoming"`
	Rows       int       `json:"rows"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}
