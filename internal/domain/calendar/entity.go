package calendar

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CreatorID uuid.UUID  `gorm:"type:uuid;not null" json:"creator_id"`
	Title     string     `gorm:"type:varchar(256);not null" json:"title"`
	Notes     *string    `gorm:"type:text" json:"notes,omitempty"`
	StartsAt  time.Time  `gorm:"not null;index:idx_events_starts" json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	AllDay    bool       `gorm:"default:false" json:"all_day"`
	CreatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}
