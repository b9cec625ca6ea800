package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Email        string     `gorm:"type:varchar(256);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(256);not null" json:"-"`
	DisplayName  string     `gorm:"type:varchar(128);not null" json:"display_name"`
	AvatarURL    *string    `gorm:"type:text" json:"avatar_url,omitempty"`
	Bio          *string    `gorm:"type:text" json:"bio,omitempty"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	// PartnerID links the two members of the space to each other.
	PartnerID    *uuid.UUID `gorm:"type:uuid" json:"partner_id,omitempty"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
	CreatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type PushToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_push_tokens_user" json:"user_id"`
	Token     string    `gorm:"type:text;not null;uniqueIndex" json:"token"`
	Platform  string    `gorm:"type:varchar(32)" json:"platform"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Online derives presence from the last heartbeat. Presence is never
// stored as a boolean.
func (u User) Online(now time.Time, threshold time.Duration) bool {
	if u.LastActiveAt == nil {
		return false
	}
	return now.Sub(*u.LastActiveAt) <= threshold
}
