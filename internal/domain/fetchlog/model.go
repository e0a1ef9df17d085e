package fetchlog

import (
	"context"
	"time"
)

// Entry records a single upstream fetch attempt.
// Maps to system.fetch_logs table.
type Entry struct {
	ID         int64      `json:"id" db:"id"`
	Provider   string     `json:"provider" db:"provider"` // ALPHA_VANTAGE | YAHOO
	Operation  string     `json:"operation" db:"operation"`
	Symbol     string     `json:"symbol" db:"symbol"`
	Status     string     `json:"status" db:"status"` // OK | ERROR | RATE_LIMITED | EMPTY
	ErrMessage *string    `json:"err_message" db:"err_message"`
	StartedTS  time.Time  `json:"started_ts" db:"started_ts"`
	DurationMS int64      `json:"duration_ms" db:"duration_ms"`
	CreatedTS  time.Time  `json:"created_ts" db:"created_ts"`
}

const (
	StatusOK          = "OK"
	StatusError       = "ERROR"
	StatusRateLimited = "RATE_LIMITED"
	StatusEmpty       = "EMPTY"
)

// Repository defines the interface for fetch log storage
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
