package model

import (
	"time"

	"github.com/Guyuepp/like-engine/domain"
)

type CountEvent struct {
	EventID     string    `gorm:"column:event_id;primaryKey;size:36"`
	PostID      int64     `gorm:"column:post_id;not null;index"`
	Delta       int64     `gorm:"column:delta;not null"`
	Status      string    `gorm:"column:status;not null"`
	RetryCount  int64     `gorm:"column:retry_count;not null;default:0"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (CountEvent) TableName() string {
	return "post_count_events"
}

func (e CountEvent) ToDomain() domain.CountEvent {
	return domain.CountEvent{
		EventID:     e.EventID,
		PostID:      e.PostID,
		Delta:       e.Delta,
		Status:      domain.EventStatus(e.Status),
		RetryCount:  e.RetryCount,
		ProcessedAt: e.ProcessedAt,
	}
}

func NewCountEventFromDomain(ev domain.CountEvent) CountEvent {
	return CountEvent{
		EventID:     ev.EventID,
		PostID:      ev.PostID,
		Delta:       ev.Delta,
		Status:      string(ev.Status),
		RetryCount:  ev.RetryCount,
		ProcessedAt: ev.ProcessedAt,
	}
}
