package domain

import (
	"context"
	"time"
)

// Like is representing a like record. At most one record may exist
// per (PostID, UserID) pair; the unique key in storage enforces it.
type Like struct {
	PostID    int64
	UserID    int64
	CreatedAt time.Time
}

// ToggleResult is the outcome of a like toggle.
// Queued is false when the relation write committed but the delta
// intent could not be published; the count catches up via replay.
type ToggleResult struct {
	Liked  bool
	Queued bool
}

// LikeCount bundles a post's counter with the optional caller state.
type LikeCount struct {
	PostID  int64
	Count   int64
	UserID  int64
	IsLiked bool
}

// LikeRepository defines the contract for like relation persistence
type LikeRepository interface {
	// InsertIfAbsent creates the relation record if it does not exist yet.
	// Returns false when the record was already there. The insert is
	// conditional at the storage layer so two racing toggles observe a
	// deterministic outcome.
	InsertIfAbsent(ctx context.Context, postID, userID int64) (bool, error)

	// Delete removes the relation record.
	// Returns false when there was nothing to remove.
	Delete(ctx context.Context, postID, userID int64) (bool, error)

	// Exists reports whether the user currently likes the post.
	Exists(ctx context.Context, postID, userID int64) (bool, error)

	// CountByPost recounts the relation records for a post.
	CountByPost(ctx context.Context, postID int64) (int64, error)
}

type LikeUsecase interface {
	Toggle(ctx context.Context, postID, userID int64) (ToggleResult, error)
	GetCount(ctx context.Context, postID int64) (LikeCount, error)
	GetCountWithUserStatus(ctx context.Context, postID, userID int64) (LikeCount, error)
	GetUserStatus(ctx context.Context, postID, userID int64) (bool, error)
}
