package entity

import "time"

// Source names the upstream a pipeline run fetches from.
type Source string

const (
	SourceBhavcopy  Source = "bhavcopy"
	SourceBrokerage Source = "brokerage"
)

// ParseSource validates a source name.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceBhavcopy, SourceBrokerage:
		return Source(s), true
	}
	return "", false
}

// RunStatus is the outcome of a pipeline run.
type RunStatus string

const (
	RunFetched  RunStatus = "fetched"
	RunUpToDate RunStatus = "up_to_date"
	RunBackfill RunStatus = "backfill"
	RunFailed   RunStatus = "failed"
)

// Run records one pipeline refresh.
type Run struct {
	ID         string
	Source     Source
	Status     RunStatus
	From       time.Time
	To         time.Time
	Incoming   int
	Rows       int
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
}
