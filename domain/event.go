package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of a ledger entry.
type EventStatus string

const (
	EventPending  EventStatus = "PENDING"
	EventRetrying EventStatus = "RETRYING"
	EventSuccess  EventStatus = "SUCCESS"
	EventFailed   EventStatus = "FAILED"
)

// CountEvent is the durable ledger entry for one delta intent, keyed by
// the producer-chosen EventID. Entries are never deleted; the table
// doubles as an audit and replay log.
type CountEvent struct {
	EventID     string
	PostID      int64
	Delta       int64
	Status      EventStatus
	RetryCount  int64
	ProcessedAt time.Time
}

// DeltaIntent is the wire payload published on every toggle.
type DeltaIntent struct {
	EventID   string    `json:"event_id"`
	PostID    int64     `json:"post_id"`
	Delta     int64     `json:"delta"`
	Timestamp time.Time `json:"timestamp"`
}

// CountEventRepository defines the contract for the event ledger
type CountEventRepository interface {
	// RecordIfAbsent creates a PENDING entry for eventID if none exists
	// and returns the stored entry either way. The insert is atomic
	// (insert-if-absent) so duplicate delivery of the same eventID can
	// never produce a second row.
	RecordIfAbsent(ctx context.Context, eventID string, postID, delta int64) (CountEvent, error)

	// SetStatus persists a status/retry-count change.
	SetStatus(ctx context.Context, eventID string, status EventStatus, retryCount int64) error

	// GetByID returns the entry, or ErrNotFound.
	GetByID(ctx context.Context, eventID string) (CountEvent, error)
}
