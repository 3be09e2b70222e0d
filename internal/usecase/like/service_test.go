package like

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guyuepp/like-engine/domain"
)

type fakeLikeRepo struct {
	likes     map[[2]int64]bool
	insertErr error
	deleteErr error
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[[2]int64]bool)}
}

func (f *fakeLikeRepo) key(postID, userID int64) [2]int64 {
	return [2]int64{postID, userID}
}

func (f *fakeLikeRepo) InsertIfAbsent(ctx context.Context, postID, userID int64) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if f.likes[f.key(postID, userID)] {
		return false, nil
	}
	f.likes[f.key(postID, userID)] = true
	return true, nil
}

func (f *fakeLikeRepo) Delete(ctx context.Context, postID, userID int64) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	if !f.likes[f.key(postID, userID)] {
		return false, nil
	}
	delete(f.likes, f.key(postID, userID))
	return true, nil
}

func (f *fakeLikeRepo) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	return f.likes[f.key(postID, userID)], nil
}

func (f *fakeLikeRepo) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	for k, v := range f.likes {
		if v && k[0] == postID {
			count++
		}
	}
	return count, nil
}

type fakePostRepo struct {
	counts map[int64]int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{counts: make(map[int64]int64)}
}

func (f *fakePostRepo) EnsureExists(ctx context.Context, postID int64) error {
	if _, ok := f.counts[postID]; !ok {
		f.counts[postID] = 0
	}
	return nil
}

func (f *fakePostRepo) ApplyDelta(ctx context.Context, postID, delta int64) error {
	f.counts[postID] += delta
	return nil
}

func (f *fakePostRepo) GetLikeCount(ctx context.Context, postID int64) (int64, error) {
	count, ok := f.counts[postID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return count, nil
}

type fakeCountCache struct {
	values      map[int64]int64
	invalidated []int64
	getErr      error
	setCalls    int
}

func newFakeCountCache() *fakeCountCache {
	return &fakeCountCache{values: make(map[int64]int64)}
}

func (f *fakeCountCache) GetLikeCount(ctx context.Context, postID int64) (int64, error) {
	if f.getErr != nil {
		return 0, f.getErr
	}
	count, ok := f.values[postID]
	if !ok {
		return 0, domain.ErrCacheMiss
	}
	return count, nil
}

func (f *fakeCountCache) SetLikeCount(ctx context.Context, postID, count int64) error {
	f.setCalls++
	f.values[postID] = count
	return nil
}

func (f *fakeCountCache) InvalidateLikeCount(ctx context.Context, postID int64) error {
	f.invalidated = append(f.invalidated, postID)
	delete(f.values, postID)
	return nil
}

type fakeProducer struct {
	published []domain.DeltaIntent
	err       error
}

func (f *fakeProducer) Publish(ctx context.Context, intent domain.DeltaIntent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, intent)
	return nil
}

func TestToggleLikeThenUnlike(t *testing.T) {
	likeRepo := newFakeLikeRepo()
	cache := newFakeCountCache()
	producer := &fakeProducer{}
	svc := NewService(likeRepo, newFakePostRepo(), cache, producer)

	res, err := svc.Toggle(context.Background(), 123, 456)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.True(t, res.Queued)

	res, err = svc.Toggle(context.Background(), 123, 456)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.True(t, res.Queued)

	require.Len(t, producer.published, 2)
	assert.Equal(t, int64(1), producer.published[0].Delta)
	assert.Equal(t, int64(-1), producer.published[1].Delta)
	assert.Equal(t, int64(123), producer.published[0].PostID)
	assert.NotEmpty(t, producer.published[0].EventID)
	assert.NotEqual(t, producer.published[0].EventID, producer.published[1].EventID)
}

func TestToggleInvalidatesCacheBeforePublish(t *testing.T) {
	likeRepo := newFakeLikeRepo()
	cache := newFakeCountCache()
	cache.values[123] = 99
	svc := NewService(likeRepo, newFakePostRepo(), cache, &fakeProducer{})

	_, err := svc.Toggle(context.Background(), 123, 456)
	require.NoError(t, err)

	assert.Contains(t, cache.invalidated, int64(123))
	_, err = cache.GetLikeCount(context.Background(), 123)
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "stale count must not survive the toggle")
}

func TestTogglePublishFailureIsDegradedSuccess(t *testing.T) {
	likeRepo := newFakeLikeRepo()
	producer := &fakeProducer{err: errors.New("broker down")}
	svc := NewService(likeRepo, newFakePostRepo(), newFakeCountCache(), producer)

	res, err := svc.Toggle(context.Background(), 123, 456)
	require.NoError(t, err, "publish failure must not fail the toggle")
	assert.True(t, res.Liked)
	assert.False(t, res.Queued)

	// Relation write stays committed.
	liked, err := likeRepo.Exists(context.Background(), 123, 456)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestToggleConcurrentUnlikeConflict(t *testing.T) {
	likeRepo := newFakeLikeRepo()
	// Relation exists so the toggle takes the delete path, but a racer
	// already removed it.
	likeRepo.likes[likeRepo.key(123, 456)] = true
	likeRepo.deleteErr = nil
	svc := NewService(likeRepo, newFakePostRepo(), newFakeCountCache(), &fakeProducer{})

	// First toggle deletes.
	res, err := svc.Toggle(context.Background(), 123, 456)
	require.NoError(t, err)
	assert.False(t, res.Liked)

	// Simulate the raced delete: insert succeeds for the next caller.
	res, err = svc.Toggle(context.Background(), 123, 456)
	require.NoError(t, err)
	assert.True(t, res.Liked)
}

func TestGetCountCacheHit(t *testing.T) {
	cache := newFakeCountCache()
	cache.values[123] = 42
	svc := NewService(newFakeLikeRepo(), newFakePostRepo(), cache, &fakeProducer{})

	res, err := svc.GetCount(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.Count)
	assert.Zero(t, cache.setCalls)
}

func TestGetCountCacheMissFallsBackAndRepopulates(t *testing.T) {
	cache := newFakeCountCache()
	posts := newFakePostRepo()
	posts.counts[123] = 7
	svc := NewService(newFakeLikeRepo(), posts, cache, &fakeProducer{})

	res, err := svc.GetCount(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Count)
	assert.Equal(t, 1, cache.setCalls)
	assert.Equal(t, int64(7), cache.values[123])
}

func TestGetCountCacheFailureDegradesToStore(t *testing.T) {
	cache := newFakeCountCache()
	cache.getErr = errors.New("redis down")
	posts := newFakePostRepo()
	posts.counts[123] = 7
	svc := NewService(newFakeLikeRepo(), posts, cache, &fakeProducer{})

	res, err := svc.GetCount(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Count)
}

func TestGetCountWithUserStatus(t *testing.T) {
	likeRepo := newFakeLikeRepo()
	likeRepo.likes[likeRepo.key(123, 456)] = true
	posts := newFakePostRepo()
	posts.counts[123] = 3
	svc := NewService(likeRepo, posts, newFakeCountCache(), &fakeProducer{})

	res, err := svc.GetCountWithUserStatus(context.Background(), 123, 456)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Count)
	assert.Equal(t, int64(456), res.UserID)
	assert.True(t, res.IsLiked)

	status, err := svc.GetUserStatus(context.Background(), 123, 789)
	require.NoError(t, err)
	assert.False(t, status)
}
