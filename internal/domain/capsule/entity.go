package capsule

import (
	"time"

	"github.com/google/uuid"
)

// CapsulePost is a scheduled timeline entry. It stays hidden from the
// partner until the unlock worker flips it at unlock_at.
type CapsulePost struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AuthorID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_capsules_author" json:"author_id"`
	Title     string     `gorm:"type:varchar(256);not null" json:"title"`
	Body      *string    `gorm:"type:text" json:"body,omitempty"`
	MediaURL  *string    `gorm:"type:text" json:"media_url,omitempty"`
	UnlockAt  time.Time  `gorm:"not null;index:idx_capsules_unlock" json:"unlock_at"`
	Unlocked  bool       `gorm:"default:false;index:idx_capsules_unlock" json:"unlocked"`
	CreatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Due reports whether the capsule should be unlocked at the given time.
func (c CapsulePost) Due(now time.Time) bool {
	return !c.Unlocked && !c.UnlockAt.After(now)
}
