package repository

import (
	"context"
	"errors"
	"time"

	"keepsake/internal/domain/calendar"
	keepsake_errors "keepsake/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresCalendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &PostgresCalendarRepository{db: db}
}

func (r *PostgresCalendarRepository) Create(ctx context.Context, e *calendar.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *PostgresCalendarRepository) GetByID(ctx context.Context, id uuid.UUID) (calendar.Event, error) {
	var e calendar.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return calendar.Event{}, keepsake_errors.ErrNotFound
		}
		return calendar.Event{}, err
	}
	return e, nil
}

func (r *PostgresCalendarRepository) GetRange(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	var events []calendar.Event
	err := r.db.WithContext(ctx).
		Where("starts_at >= ? AND starts_at < ?", from, to).
		Order("starts_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresCalendarRepository) Update(ctx context.Context, e calendar.Event) error {
	return r.db.WithContext(ctx).Save(&e).Error
}

func (r *PostgresCalendarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&calendar.Event{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return keepsake_errors.ErrNotFound
	}
	return nil
}
