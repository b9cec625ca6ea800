package message

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	TypeText  MessageType = "TEXT"
	TypeImage MessageType = "IMAGE"
	TypeFile  MessageType = "FILE"
	TypeMixed MessageType = "MIXED"
)

type DeliveryStatus string

const (
	StatusSending   DeliveryStatus = "SENDING"
	StatusSent      DeliveryStatus = "SENT"
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusRead      DeliveryStatus = "READ"
	StatusFailed    DeliveryStatus = "FAILED"
)

type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
)

type Message struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	SenderID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_sender" json:"sender_id"`
	// ClientMsgID correlates a persisted record with the optimistic entry
	// that produced it.
	ClientMsgID    string         `gorm:"type:varchar(64);uniqueIndex:idx_messages_client_msg_id,where:client_msg_id <> ''" json:"client_msg_id,omitempty"`
	Type           MessageType    `gorm:"type:varchar(16);default:'TEXT';not null" json:"type"`
	Content        *string        `gorm:"type:text" json:"content,omitempty"`
	AttachmentURL  *string        `gorm:"type:text" json:"attachment_url,omitempty"`
	AttachmentKind AttachmentKind `gorm:"type:varchar(16)" json:"attachment_kind,omitempty"`
	Status         DeliveryStatus `gorm:"type:varchar(16);default:'SENT';not null" json:"status"`
	Deleted        bool           `gorm:"default:false" json:"deleted"`
	Edited         bool           `gorm:"default:false" json:"edited"`
	EditedAt       *time.Time     `json:"edited_at,omitempty"`
	// A message carries at most one reaction in a two-person space.
	ReactionEmoji *string    `gorm:"type:varchar(16)" json:"reaction_emoji,omitempty"`
	ReactionBy    *uuid.UUID `gorm:"type:uuid" json:"reaction_by,omitempty"`
	Saved         bool       `gorm:"default:false;index:idx_messages_saved" json:"saved"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP;index:idx_messages_created,sort:desc" json:"created_at"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
}

// ResolveType derives the coarse type tag from the message's parts.
func ResolveType(content *string, kind AttachmentKind) MessageType {
	hasText := content != nil && *content != ""
	switch {
	case hasText && kind != "":
		return TypeMixed
	case kind == AttachmentImage:
		return TypeImage
	case kind == AttachmentFile:
		return TypeFile
	default:
		return TypeText
	}
}

// CanTransition reports whether a delivery status change is legal.
// SENDING may fail; everything else only moves forward.
func CanTransition(from, to DeliveryStatus) bool {
	switch from {
	case StatusSending:
		return to == StatusSent || to == StatusFailed
	case StatusSent:
		return to == StatusDelivered || to == StatusRead
	case StatusDelivered:
		return to == StatusRead
	case StatusFailed:
		return to == StatusSending
	default:
		return false
	}
}
