package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"keepsake/internal/domain/message"
	"keepsake/internal/domain/outbox"
	"keepsake/internal/repository"
	keepsake_errors "keepsake/pkg/errors"
	"keepsake/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageService struct {
	db          *gorm.DB
	messageRepo repository.MessageRepository
	window      time.Duration
	maxMessages int
}

type SendMessageInput struct {
	SenderID       uuid.UUID
	ClientMsgID    string
	Content        string
	AttachmentURL  string
	AttachmentKind message.AttachmentKind
}

func NewMessageService(db *gorm.DB, messageRepo repository.MessageRepository, window time.Duration, maxMessages int) *MessageService {
	if window <= 0 {
		window = 24 * time.Hour
	}
	if maxMessages <= 0 {
		maxMessages = 200
	}
	return &MessageService{
		db:          db,
		messageRepo: messageRepo,
		window:      window,
		maxMessages: maxMessages,
	}
}

// Send persists one message and its outbox event in a single transaction.
// Re-sends carrying a known client_msg_id return the existing record, so a
// retried write never produces two persisted messages.
func (s *MessageService) Send(ctx context.Context, input SendMessageInput) (message.Message, error) {
	if input.SenderID == uuid.Nil {
		return message.Message{}, keepsake_errors.ErrUnauthorized
	}
	content := strings.TrimSpace(input.Content)
	if content == "" && input.AttachmentURL == "" {
		return message.Message{}, keepsake_errors.ErrInvalidInput
	}

	if input.ClientMsgID != "" {
		if existing, err := s.messageRepo.GetByClientMsgID(ctx, input.ClientMsgID); err == nil {
			return existing, nil
		} else if err != keepsake_errors.ErrNotFound {
			return message.Message{}, err
		}
	}

	msg := message.Message{
		ID:          uuid.New(),
		SenderID:    input.SenderID,
		ClientMsgID: input.ClientMsgID,
		Type:        message.ResolveType(nullable(content), input.AttachmentKind),
		Content:     nullable(content),
		Status:      message.StatusSent,
		CreatedAt:   time.Now(),
	}
	if input.AttachmentURL != "" {
		msg.AttachmentURL = &input.AttachmentURL
		msg.AttachmentKind = input.AttachmentKind
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msgRepo := repository.NewMessageRepository(tx)
		if err := msgRepo.Create(ctx, &msg); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "message", msg.ID, events.EventMessageNew, msg)
	})
	if err != nil {
		return message.Message{}, err
	}
	return msg, nil
}

// GetWindow returns the live feed window: messages inside the rolling
// retention span plus saved ones, newest first.
func (s *MessageService) GetWindow(ctx context.Context) ([]message.Message, error) {
	since := time.Now().Add(-s.window)
	return s.messageRepo.GetWindow(ctx, since, s.maxMessages)
}

func (s *MessageService) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	return s.messageRepo.GetByID(ctx, id)
}

func (s *MessageService) Edit(ctx context.Context, id, editorID uuid.UUID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return keepsake_errors.ErrInvalidInput
	}
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != editorID {
		return keepsake_errors.ErrForbidden
	}
	if msg.AttachmentURL != nil && msg.Content == nil {
		return keepsake_errors.ErrInvalidInput
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewMessageRepository(tx).UpdateContent(ctx, id, content); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "message", id, events.EventMessageEdited, map[string]interface{}{
			"id":      id,
			"content": content,
		})
	})
}

// Delete soft-deletes: the record stays, content is cleared.
func (s *MessageService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != actorID {
		return keepsake_errors.ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewMessageRepository(tx).SoftDelete(ctx, id); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "message", id, events.EventMessageDeleted, map[string]interface{}{"id": id})
	})
}

func (s *MessageService) React(ctx context.Context, id, reactorID uuid.UUID, emoji string) error {
	if emoji == "" {
		return keepsake_errors.ErrInvalidInput
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewMessageRepository(tx).SetReaction(ctx, id, emoji, reactorID); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "message", id, events.EventMessageReaction, map[string]interface{}{
			"id":    id,
			"emoji": emoji,
			"by":    reactorID,
		})
	})
}

func (s *MessageService) ClearReaction(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewMessageRepository(tx).ClearReaction(ctx, id); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "message", id, events.EventMessageReaction, map[string]interface{}{"id": id})
	})
}

func (s *MessageService) SetSaved(ctx context.Context, id uuid.UUID, saved bool) error {
	return s.messageRepo.SetSaved(ctx, id, saved)
}

func (s *MessageService) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewMessageRepository(tx).MarkDelivered(ctx, id); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "message", id, events.EventMessageDelivered, map[string]interface{}{"id": id})
	})
}

func (s *MessageService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewMessageRepository(tx).MarkRead(ctx, id); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "message", id, events.EventMessageRead, map[string]interface{}{"id": id})
	})
}

func (s *MessageService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewMessageRepository(tx).MarkAllRead(ctx, recipientID); err != nil {
			return err
		}
		return writeOutboxEvent(ctx, tx, "message", recipientID, events.EventMessageRead, map[string]interface{}{
			"recipient_id": recipientID,
			"all":          true,
		})
	})
}

func writeOutboxEvent(ctx context.Context, tx *gorm.DB, aggregateType string, aggregateID uuid.UUID, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return repository.NewOutboxRepository(tx).Create(ctx, &outbox.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       string(data),
		Status:        outbox.StatusPending,
		CreatedAt:     time.Now(),
	})
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
