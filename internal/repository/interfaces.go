package repository

import (
	"context"
	"time"

	"keepsake/internal/domain/calendar"
	"keepsake/internal/domain/capsule"
	"keepsake/internal/domain/message"
	"keepsake/internal/domain/outbox"
	"keepsake/internal/domain/user"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	GetByClientMsgID(ctx context.Context, clientMsgID string) (message.Message, error)
	// GetWindow returns messages newer than since, newest first, capped
	// at limit. Saved messages are included regardless of age.
	GetWindow(ctx context.Context, since time.Time, limit int) ([]message.Message, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SetReaction(ctx context.Context, id uuid.UUID, emoji string, reactorID uuid.UUID) error
	ClearReaction(ctx context.Context, id uuid.UUID) error
	SetSaved(ctx context.Context, id uuid.UUID, saved bool) error
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) error
}

type CapsuleRepository interface {
	Create(ctx context.Context, c *capsule.CapsulePost) error
	GetByID(ctx context.Context, id uuid.UUID) (capsule.CapsulePost, error)
	// GetTimeline returns unlocked posts plus the viewer's own locked
	// ones, newest unlock first.
	GetTimeline(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]capsule.CapsulePost, int64, error)
	GetDue(ctx context.Context, now time.Time, limit int) ([]capsule.CapsulePost, error)
	MarkUnlocked(ctx context.Context, id uuid.UUID) error
	Update(ctx context.Context, c capsule.CapsulePost) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type CalendarRepository interface {
	Create(ctx context.Context, e *calendar.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (calendar.Event, error)
	GetRange(ctx context.Context, from, to time.Time) ([]calendar.Event, error)
	Update(ctx context.Context, e calendar.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetPartner(ctx context.Context, userID uuid.UUID) (user.User, error)
	Update(ctx context.Context, u user.User) error
	LinkPartner(ctx context.Context, userID, partnerID uuid.UUID) error
	TouchLastActive(ctx context.Context, userID uuid.UUID, at time.Time) error
	UpsertPushToken(ctx context.Context, t *user.PushToken) error
	GetPushTokens(ctx context.Context, userID uuid.UUID) ([]user.PushToken, error)
	DeletePushToken(ctx context.Context, token string) error
}

type OutboxRepository interface {
	Create(ctx context.Context, e *outbox.OutboxEvent) error
	GetPending(ctx context.Context, limit int) ([]outbox.OutboxEvent, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	IncrementRetry(ctx context.Context, id uuid.UUID) error
}
