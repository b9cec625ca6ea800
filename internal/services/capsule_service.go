package services

import (
	"context"
	"strings"
	"time"

	"keepsake/internal/domain/capsule"
	"keepsake/internal/repository"
	keepsake_errors "keepsake/pkg/errors"
	"keepsake/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CapsuleService struct {
	db          *gorm.DB
	capsuleRepo repository.CapsuleRepository
}

type CreateCapsuleInput struct {
	AuthorID uuid.UUID
	Title    string
	Body     string
	MediaURL string
	UnlockAt time.Time
}

func NewCapsuleService(db *gorm.DB, capsuleRepo repository.CapsuleRepository) *CapsuleService {
	return &CapsuleService{db: db, capsuleRepo: capsuleRepo}
}

func (s *CapsuleService) Create(ctx context.Context, input CreateCapsuleInput) (capsule.CapsulePost, error) {
	if input.AuthorID == uuid.Nil || strings.TrimSpace(input.Title) == "" {
		return capsule.CapsulePost{}, keepsake_errors.ErrInvalidInput
	}
	if input.UnlockAt.Before(time.Now()) {
		return capsule.CapsulePost{}, keepsake_errors.ErrInvalidInput
	}

	post := capsule.CapsulePost{
		ID:        uuid.New(),
		AuthorID:  input.AuthorID,
		Title:     strings.TrimSpace(input.Title),
		Body:      nullable(input.Body),
		MediaURL:  nullable(input.MediaURL),
		UnlockAt:  input.UnlockAt,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.capsuleRepo.Create(ctx, &post); err != nil {
		return capsule.CapsulePost{}, err
	}
	return post, nil
}

func (s *CapsuleService) GetTimeline(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]capsule.CapsulePost, int64, error) {
	return s.capsuleRepo.GetTimeline(ctx, viewerID, page, limit)
}

// GetByID hides another author's capsule until it unlocks.
func (s *CapsuleService) GetByID(ctx context.Context, id, viewerID uuid.UUID) (capsule.CapsulePost, error) {
	post, err := s.capsuleRepo.GetByID(ctx, id)
	if err != nil {
		return capsule.CapsulePost{}, err
	}
	if !post.Unlocked && post.AuthorID != viewerID {
		return capsule.CapsulePost{}, keepsake_errors.ErrLocked
	}
	return post, nil
}

// Update is author-only and only while the capsule is still locked.
func (s *CapsuleService) Update(ctx context.Context, id, actorID uuid.UUID, title, body string, unlockAt time.Time) (capsule.CapsulePost, error) {
	post, err := s.capsuleRepo.GetByID(ctx, id)
	if err != nil {
		return capsule.CapsulePost{}, err
	}
	if post.AuthorID != actorID {
		return capsule.CapsulePost{}, keepsake_errors.ErrForbidden
	}
	if post.Unlocked {
		return capsule.CapsulePost{}, keepsake_errors.ErrConflict
	}

	if strings.TrimSpace(title) != "" {
		post.Title = strings.TrimSpace(title)
	}
	if body != "" {
		post.Body = nullable(body)
	}
	if !unlockAt.IsZero() {
		if unlockAt.Before(time.Now()) {
			return capsule.CapsulePost{}, keepsake_errors.ErrInvalidInput
		}
		post.UnlockAt = unlockAt
	}
	post.UpdatedAt = time.Now()

	if err := s.capsuleRepo.Update(ctx, post); err != nil {
		return capsule.CapsulePost{}, err
	}
	return post, nil
}

func (s *CapsuleService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	post, err := s.capsuleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return keepsake_errors.ErrForbidden
	}
	return s.capsuleRepo.SoftDelete(ctx, id)
}

// UnlockDue flips every capsule whose unlock time has passed and writes an
// unlock event for each, in one transaction per capsule so a crash cannot
// unlock without notifying.
func (s *CapsuleService) UnlockDue(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := s.capsuleRepo.GetDue(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	unlocked := 0
	for _, post := range due {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := repository.NewCapsuleRepository(tx).MarkUnlocked(ctx, post.ID); err != nil {
				return err
			}
			return writeOutboxEvent(ctx, tx, "capsule", post.ID, events.EventCapsuleUnlocked, post)
		})
		if err != nil {
			continue
		}
		unlocked++
	}
	return unlocked, nil
}
