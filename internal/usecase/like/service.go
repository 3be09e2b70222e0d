package like

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/like-engine/domain"
)

type Service struct {
	likeRepo domain.LikeRepository
	postRepo domain.PostRepository
	cache    domain.CountCache
	producer domain.IntentProducer
}

var _ domain.LikeUsecase = (*Service)(nil)

// NewService will create a new like service object
func NewService(l domain.LikeRepository, p domain.PostRepository, c domain.CountCache, pr domain.IntentProducer) *Service {
	return &Service{
		likeRepo: l,
		postRepo: p,
		cache:    c,
		producer: pr,
	}
}

// Toggle flips the like relation for (postID, userID) and emits a delta
// intent for the aggregate counter. The toggle is committed once the
// relation write lands; a publish failure is reported as a degraded
// outcome (Queued=false), never rolled back.
func (s *Service) Toggle(ctx context.Context, postID, userID int64) (domain.ToggleResult, error) {
	var delta int64
	var liked bool

	inserted, err := s.likeRepo.InsertIfAbsent(ctx, postID, userID)
	if err != nil {
		return domain.ToggleResult{}, err
	}

	if inserted {
		delta, liked = 1, true
		logrus.Infof("user %d liked post %d", userID, postID)
	} else {
		deleted, err := s.likeRepo.Delete(ctx, postID, userID)
		if err != nil {
			return domain.ToggleResult{}, err
		}
		if !deleted {
			// A concurrent toggle removed the relation between our
			// insert and delete. Let the caller resubmit.
			return domain.ToggleResult{}, domain.ErrConflict
		}
		delta, liked = -1, false
		logrus.Infof("user %d unliked post %d", userID, postID)
	}

	// Invalidate synchronously with the relation write so a stale count
	// is never served past this toggle.
	if err := s.cache.InvalidateLikeCount(ctx, postID); err != nil {
		logrus.Warnf("failed to invalidate count cache for post %d: %v", postID, err)
	}

	intent := domain.DeltaIntent{
		EventID:   uuid.NewString(),
		PostID:    postID,
		Delta:     delta,
		Timestamp: time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, intent); err != nil {
		logrus.Errorf("failed to publish delta intent %s for post %d: %v", intent.EventID, postID, err)
		return domain.ToggleResult{Liked: liked, Queued: false}, nil
	}

	return domain.ToggleResult{Liked: liked, Queued: true}, nil
}

// GetCount serves the counter from the cache when possible and falls
// back to the aggregate store on a miss or a cache failure, then
// repopulates the cache.
func (s *Service) GetCount(ctx context.Context, postID int64) (domain.LikeCount, error) {
	count, err := s.cache.GetLikeCount(ctx, postID)
	if err == nil {
		return domain.LikeCount{PostID: postID, Count: count}, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		logrus.Warnf("cache read failed for post %d, falling back to store: %v", postID, err)
	}

	if err := s.postRepo.EnsureExists(ctx, postID); err != nil {
		return domain.LikeCount{}, err
	}
	count, err = s.postRepo.GetLikeCount(ctx, postID)
	if err != nil {
		return domain.LikeCount{}, err
	}

	if err := s.cache.SetLikeCount(ctx, postID, count); err != nil {
		logrus.Warnf("failed to repopulate count cache for post %d: %v", postID, err)
	}

	return domain.LikeCount{PostID: postID, Count: count}, nil
}

func (s *Service) GetCountWithUserStatus(ctx context.Context, postID, userID int64) (domain.LikeCount, error) {
	res, err := s.GetCount(ctx, postID)
	if err != nil {
		return domain.LikeCount{}, err
	}

	isLiked, err := s.likeRepo.Exists(ctx, postID, userID)
	if err != nil {
		logrus.Errorf("failed to get like status for post %d, user %d: %v", postID, userID, err)
		return res, nil
	}
	res.UserID = userID
	res.IsLiked = isLiked
	return res, nil
}

func (s *Service) GetUserStatus(ctx context.Context, postID, userID int64) (bool, error) {
	return s.likeRepo.Exists(ctx, postID, userID)
}
