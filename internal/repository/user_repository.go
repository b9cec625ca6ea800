package repository

import (
	"context"
	"errors"
	"time"

	"keepsake/internal/domain/user"
	keepsake_errors "keepsake/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	res := r.db.WithContext(ctx).Create(u)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return keepsake_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, keepsake_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, keepsake_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetPartner(ctx context.Context, userID uuid.UUID) (user.User, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if u.PartnerID == nil {
		return user.User{}, keepsake_errors.ErrNotFound
	}
	return r.GetByID(ctx, *u.PartnerID)
}

func (r *PostgresUserRepository) Update(ctx context.Context, u user.User) error {
	return r.db.WithContext(ctx).Save(&u).Error
}

func (r *PostgresUserRepository) LinkPartner(ctx context.Context, userID, partnerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user.User{}).Where("id = ?", userID).Update("partner_id", partnerID).Error; err != nil {
			return err
		}
		return tx.Model(&user.User{}).Where("id = ?", partnerID).Update("partner_id", userID).Error
	})
}

func (r *PostgresUserRepository) TouchLastActive(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ?", userID).
		Update("last_active_at", at).Error
}

func (r *PostgresUserRepository) UpsertPushToken(ctx context.Context, t *user.PushToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(t).Error
}

func (r *PostgresUserRepository) GetPushTokens(ctx context.Context, userID uuid.UUID) ([]user.PushToken, error) {
	var tokens []user.PushToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *PostgresUserRepository) DeletePushToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Delete(&user.PushToken{}, "token = ?", token).Error
}
