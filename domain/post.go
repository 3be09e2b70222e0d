package domain

import "context"

// Post is the aggregate side of the like counter. LikeCount may lag
// behind the relation table while delta intents are still in flight.
type Post struct {
	ID        int64
	LikeCount int64
}

// PostRepository defines the contract for the durable aggregate counter
type PostRepository interface {
	// EnsureExists lazily creates the aggregate row for a previously
	// unseen post, seeding the counter from a recount of the relation
	// records. Idempotent.
	EnsureExists(ctx context.Context, postID int64) error

	// ApplyDelta adds delta to the counter with an atomic increment at
	// the storage layer. Never read-modify-write from memory: multiple
	// consumer workers may apply deltas concurrently.
	ApplyDelta(ctx context.Context, postID, delta int64) error

	// GetLikeCount reads the current counter.
	// Returns ErrNotFound if the aggregate row doesn't exist.
	GetLikeCount(ctx context.Context, postID int64) (int64, error)
}

// CountCache is the short-TTL cache of the aggregate counter. It is
// never the sole source of truth; a miss or failure always falls back
// to PostRepository.
type CountCache interface {
	// GetLikeCount returns the cached counter, or ErrCacheMiss.
	GetLikeCount(ctx context.Context, postID int64) (int64, error)

	SetLikeCount(ctx context.Context, postID, count int64) error

	// InvalidateLikeCount drops the entry. Called synchronously with
	// every relation write so a stale count never outlives a toggle.
	InvalidateLikeCount(ctx context.Context, postID int64) error
}
