package repository

import (
	"context"
	"errors"
	"time"

	"keepsake/internal/domain/capsule"
	keepsake_errors "keepsake/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresCapsuleRepository struct {
	db *gorm.DB
}

func NewCapsuleRepository(db *gorm.DB) CapsuleRepository {
	return &PostgresCapsuleRepository{db: db}
}

func (r *PostgresCapsuleRepository) Create(ctx context.Context, c *capsule.CapsulePost) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *PostgresCapsuleRepository) GetByID(ctx context.Context, id uuid.UUID) (capsule.CapsulePost, error) {
	var c capsule.CapsulePost
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return capsule.CapsulePost{}, keepsake_errors.ErrNotFound
		}
		return capsule.CapsulePost{}, err
	}
	return c, nil
}

func (r *PostgresCapsuleRepository) GetTimeline(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]capsule.CapsulePost, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Model(&capsule.CapsulePost{}).
		Where("deleted_at IS NULL").
		Where("unlocked = ? OR author_id = ?", true, viewerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []capsule.CapsulePost
	err := query.
		Order("unlock_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostgresCapsuleRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]capsule.CapsulePost, error) {
	var posts []capsule.CapsulePost
	err := r.db.WithContext(ctx).
		Where("unlocked = ? AND unlock_at <= ? AND deleted_at IS NULL", false, now).
		Order("unlock_at ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostgresCapsuleRepository) MarkUnlocked(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&capsule.CapsulePost{}).
		Where("id = ? AND unlocked = ?", id, false).
		Update("unlocked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return keepsake_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresCapsuleRepository) Update(ctx context.Context, c capsule.CapsulePost) error {
	return r.db.WithContext(ctx).Save(&c).Error
}

func (r *PostgresCapsuleRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&capsule.CapsulePost{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return keepsake_errors.ErrNotFound
	}
	return nil
}
