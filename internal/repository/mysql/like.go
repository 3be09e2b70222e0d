package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Guyuepp/like-engine/domain"
	"github.com/Guyuepp/like-engine/internal/repository/mysql/model"
)

type likeRepository struct {
	DB *gorm.DB
}

var _ domain.LikeRepository = (*likeRepository)(nil)

func NewLikeRepository(db *gorm.DB) *likeRepository {
	return &likeRepository{db}
}

// InsertIfAbsent relies on the unique key over (post_id, user_id) as
// the disambiguator under concurrent toggles: the conditional insert
// affects zero rows when the relation already exists, instead of a
// check-then-write race.
func (m *likeRepository) InsertIfAbsent(ctx context.Context, postID, userID int64) (bool, error) {
	like := model.Like{
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	result := m.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (m *likeRepository) Delete(ctx context.Context, postID, userID int64) (bool, error) {
	result := m.DB.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.Like{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (m *likeRepository) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	var count int64
	err := m.DB.WithContext(ctx).
		Model(&model.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m *likeRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := m.DB.WithContext(ctx).
		Model(&model.Like{}).
		Where("post_id = ?", postID).
		Count(&count).
		Error
	return count, err
}
