package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Guyuepp/like-engine/domain"
	"github.com/Guyuepp/like-engine/internal/repository/mysql/model"
)

type postRepository struct {
	DB *gorm.DB
}

var _ domain.PostRepository = (*postRepository)(nil)

func NewPostRepository(db *gorm.DB) *postRepository {
	return &postRepository{db}
}

// EnsureExists lazily creates the aggregate row for a previously unseen
// post. The counter is seeded from a recount of the likes table so a
// post that accumulated relations before its row existed starts honest.
func (m *postRepository) EnsureExists(ctx context.Context, postID int64) error {
	var post model.Post
	err := m.DB.WithContext(ctx).First(&post, "id = ?", postID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var likeCount int64
	err = m.DB.WithContext(ctx).
		Model(&model.Like{}).
		Where("post_id = ?", postID).
		Count(&likeCount).
		Error
	if err != nil {
		return err
	}

	// OnConflict keeps this idempotent when two workers race the create.
	return m.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Post{ID: postID, LikeCount: likeCount}).
		Error
}

// ApplyDelta increments the counter at the storage layer, never
// read-modify-write from application memory.
func (m *postRepository) ApplyDelta(ctx context.Context, postID, delta int64) error {
	result := m.DB.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", postID).
		Update("like_count", gorm.Expr("like_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *postRepository) GetLikeCount(ctx context.Context, postID int64) (int64, error) {
	var post model.Post
	err := m.DB.WithContext(ctx).First(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return post.LikeCount, nil
}
