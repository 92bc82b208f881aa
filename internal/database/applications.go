package database

import (
	"context"
	"errors"
	"fmt"

	"nok-landing/internal/models"

	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Name() string { return "postgres" }

// Record сохраняет одобренную заявку.
func (r *ApplicationRepository) Record(ctx context.Context, sub *models.ApplicationSubmission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *ApplicationRepository) List(ctx context.Context, limit int) ([]models.ApplicationSubmission, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	var subs []models.ApplicationSubmission
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

func (r *ApplicationRepository) Get(ctx context.Context, id uint) (*models.ApplicationSubmission, error) {
	var sub models.ApplicationSubmission
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// Recorder: следующий получатель заявки внутри транзакции.
type Recorder interface {
	Record(ctx context.Context, sub *models.ApplicationSubmission) error
}

// Then сохраняет заявку и передаёт её next в одной транзакции:
// если next вернул ошибку, строка откатывается.
func (r *ApplicationRepository) Then(next Recorder, name string) *ChainedRecorder {
	return &ChainedRecorder{db: r.db, next: next, name: name}
}

type ChainedRecorder struct {
	db   *gorm.DB
	next Recorder
	name string
}

func (c *ChainedRecorder) Name() string { return "postgres+" + c.name }

func (c *ChainedRecorder) Record(ctx context.Context, sub *models.ApplicationSubmission) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		if err := c.next.Record(ctx, sub); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		return nil
	})
}
