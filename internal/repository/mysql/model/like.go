package model

import (
	"time"

	"github.com/Guyuepp/like-engine/domain"
)

type Like struct {
	PostID    int64     `gorm:"column:post_id;not null;uniqueIndex:uk_post_user"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:uk_post_user"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Like) TableName() string {
	return "likes"
}

func (l Like) ToDomain() domain.Like {
	return domain.Like{
		PostID:    l.PostID,
		UserID:    l.UserID,
		CreatedAt: l.CreatedAt,
	}
}

func NewLikeFromDomain(like domain.Like) Like {
	return Like{
		PostID:    like.PostID,
		UserID:    like.UserID,
		CreatedAt: like.CreatedAt,
	}
}
