package services

import (
	"context"
	"strings"
	"time"

	"keepsake/internal/domain/calendar"
	"keepsake/internal/repository"
	keepsake_errors "keepsake/pkg/errors"
	"keepsake/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CalendarService struct {
	db           *gorm.DB
	calendarRepo repository.CalendarRepository
}

type CalendarEventInput struct {
	Title    string
	Notes    string
	StartsAt time.Time
	EndsAt   *time.Time
	AllDay   bool
}

func NewCalendarService(db *gorm.DB, calendarRepo repository.CalendarRepository) *CalendarService {
	return &CalendarService{db: db, calendarRepo: calendarRepo}
}

func (s *CalendarService) Create(ctx context.Context, creatorID uuid.UUID, input CalendarEventInput) (calendar.Event, error) {
	if strings.TrimSpace(input.Title) == "" || input.StartsAt.IsZero() {
		return calendar.Event{}, keepsake_errors.ErrInvalidInput
	}
	if input.EndsAt != nil && input.EndsAt.Before(input.StartsAt) {
		return calendar.Event{}, keepsake_errors.ErrInvalidInput
	}

	event := calendar.Event{
		ID:        uuid.New(),
		CreatorID: creatorID,
		Title:     strings.TrimSpace(input.Title),
		Notes:     nullable(input.Notes),
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
		AllDay:    input.AllDay,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCalendarRepository(tx).Create(ctx, &event); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "calendar", event.ID, events.EventCalendarChanged, event)
	})
	if err != nil {
		return calendar.Event{}, err
	}
	return event, nil
}

func (s *CalendarService) GetRange(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	if !to.After(from) {
		return nil, keepsake_errors.ErrInvalidInput
	}
	return s.calendarRepo.GetRange(ctx, from, to)
}

func (s *CalendarService) Update(ctx context.Context, id uuid.UUID, input CalendarEventInput) (calendar.Event, error) {
	event, err := s.calendarRepo.GetByID(ctx, id)
	if err != nil {
		return calendar.Event{}, err
	}

	if strings.TrimSpace(input.Title) != "" {
		event.Title = strings.TrimSpace(input.Title)
	}
	if input.Notes != "" {
		event.Notes = nullable(input.Notes)
	}
	if !input.StartsAt.IsZero() {
		event.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		event.EndsAt = input.EndsAt
	}
	event.AllDay = input.AllDay
	event.UpdatedAt = time.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCalendarRepository(tx).Update(ctx, event); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "calendar", event.ID, events.EventCalendarChanged, event)
	})
	if err != nil {
		return calendar.Event{}, err
	}
	return event, nil
}

func (s *CalendarService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCalendarRepository(tx).Delete(ctx, id); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "calendar", id, events.EventCalendarChanged, map[string]interface{}{
			"id":      id,
			"deleted": true,
		})
	})
}
