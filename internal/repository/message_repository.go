package repository

import (
	"context"
	"errors"
	"time"

	"keepsake/internal/domain/message"
	keepsake_errors "keepsake/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return keepsake_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, keepsake_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) GetByClientMsgID(ctx context.Context, clientMsgID string) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Where("client_msg_id = ?", clientMsgID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, keepsake_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) GetWindow(ctx context.Context, since time.Time, limit int) ([]message.Message, error) {
	var msgs []message.Message
	err := r.db.WithContext(ctx).
		Where("created_at > ? OR saved = ?", since, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *PostgresMessageRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	res := r.db.WithContext(ctx).Model(&message.Message{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]interface{}{
			"content":   content,
			"edited":    true,
			"edited_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return keepsake_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&message.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted": true,
			"content": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return keepsake_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) SetReaction(ctx context.Context, id uuid.UUID, emoji string, reactorID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&message.Message{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]interface{}{
			"reaction_emoji": emoji,
			"reaction_by":    reactorID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return keepsake_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) ClearReaction(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&message.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reaction_emoji": nil,
			"reaction_by":    nil,
		}).Error
}

func (r *PostgresMessageRepository) SetSaved(ctx context.Context, id uuid.UUID, saved bool) error {
	res := r.db.WithContext(ctx).Model(&message.Message{}).
		Where("id = ?", id).
		Update("saved", saved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return keepsake_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&message.Message{}).
		Where("id = ? AND status = ?", id, message.StatusSent).
		Updates(map[string]interface{}{
			"status":       message.StatusDelivered,
			"delivered_at": time.Now(),
		}).Error
}

func (r *PostgresMessageRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&message.Message{}).
		Where("id = ? AND status IN ?", id, []message.DeliveryStatus{message.StatusSent, message.StatusDelivered}).
		Updates(map[string]interface{}{
			"status":  message.StatusRead,
			"read_at": time.Now(),
		}).Error
}

func (r *PostgresMessageRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&message.Message{}).
		Where("sender_id <> ? AND status IN ?", recipientID, []message.DeliveryStatus{message.StatusSent, message.StatusDelivered}).
		Updates(map[string]interface{}{
			"status":  message.StatusRead,
			"read_at": time.Now(),
		}).Error
}
