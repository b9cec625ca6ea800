package outbox

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and published to Redis by the outbox worker.
type OutboxEvent struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AggregateType string     `gorm:"type:varchar(64);not null" json:"aggregate_type"`
	AggregateID   uuid.UUID  `gorm:"type:uuid;not null" json:"aggregate_id"`
	EventType     string     `gorm:"type:varchar(64);not null" json:"event_type"`
	Payload       string     `gorm:"type:jsonb;not null" json:"payload"`
	Status        Status     `gorm:"type:varchar(16);default:'PENDING';not null;index:idx_outbox_status" json:"status"`
	RetryCount    int        `gorm:"default:0" json:"retry_count"`
	LastError     *string    `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}
