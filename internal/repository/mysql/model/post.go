package model

import "github.com/Guyuepp/like-engine/domain"

type Post struct {
	ID        int64 `gorm:"column:id;primaryKey"`
	LikeCount int64 `gorm:"column:like_count;not null;default:0"`
}

func (Post) TableName() string {
	return "posts"
}

func (p Post) ToDomain() domain.Post {
	return domain.Post{
		ID:        p.ID,
		LikeCount: p.LikeCount,
	}
}
