package database

import (
	"context"

	"nok-landing/internal/models"

	"gorm.io/gorm"
)

// EventRepository: журнал попыток отправки формы.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) LogEvent(ctx context.Context, ev *models.SubmissionEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *EventRepository) ListEvents(ctx context.Context, limit int) ([]models.SubmissionEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	var events []models.SubmissionEvent
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&events).Error
	return events, err
}
