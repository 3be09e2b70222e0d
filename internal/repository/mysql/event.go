package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Guyuepp/like-engine/domain"
	"github.com/Guyuepp/like-engine/internal/repository/mysql/model"
)

type countEventRepository struct {
	DB *gorm.DB
}

var _ domain.CountEventRepository = (*countEventRepository)(nil)

func NewCountEventRepository(db *gorm.DB) *countEventRepository {
	return &countEventRepository{db}
}

// RecordIfAbsent is the idempotent intake of the ledger: the primary
// key on event_id plus the conditional insert guarantee one row per
// event no matter how often the bus redelivers it.
func (m *countEventRepository) RecordIfAbsent(ctx context.Context, eventID string, postID, delta int64) (domain.CountEvent, error) {
	event := model.CountEvent{
		EventID:     eventID,
		PostID:      postID,
		Delta:       delta,
		Status:      string(domain.EventPending),
		RetryCount:  0,
		ProcessedAt: time.Now(),
	}
	result := m.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&event)
	if result.Error != nil {
		return domain.CountEvent{}, result.Error
	}
	if result.RowsAffected > 0 {
		return event.ToDomain(), nil
	}

	// Lost the insert race or redelivered: return the existing entry.
	return m.GetByID(ctx, eventID)
}

func (m *countEventRepository) SetStatus(ctx context.Context, eventID string, status domain.EventStatus, retryCount int64) error {
	result := m.DB.WithContext(ctx).
		Model(&model.CountEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]any{
			"status":       string(status),
			"retry_count":  retryCount,
			"processed_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *countEventRepository) GetByID(ctx context.Context, eventID string) (domain.CountEvent, error) {
	var event model.CountEvent
	err := m.DB.WithContext(ctx).First(&event, "event_id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CountEvent{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CountEvent{}, err
	}
	return event.ToDomain(), nil
}
