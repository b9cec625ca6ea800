// Package feed maintains the merged, time-ordered view of a two-person
// message feed: the persisted window streamed by the backend plus the
// local optimistic-send buffer.
package feed

import (
	"strings"
	"time"

	"keepsake/internal/domain/message"

	"github.com/google/uuid"
)

// TempIDPrefix marks locally assigned ids for not-yet-persisted sends.
const TempIDPrefix = "temp-"

// Message is the view-level record the reconciler merges and emits.
// ID is either a server uuid or a temp- prefixed local id.
type Message struct {
	ID             string                 `json:"id"`
	ClientMsgID    string                 `json:"client_msg_id,omitempty"`
	SenderID       uuid.UUID              `json:"sender_id"`
	Content        string                 `json:"content,omitempty"`
	AttachmentURL  string                 `json:"attachment_url,omitempty"`
	AttachmentKind message.AttachmentKind `json:"attachment_kind,omitempty"`
	Type           message.MessageType    `json:"type"`
	Status         message.DeliveryStatus `json:"status"`
	Saved          bool                   `json:"saved"`
	Deleted        bool                   `json:"deleted"`
	Edited         bool                   `json:"edited"`
	CreatedAt      time.Time              `json:"created_at"`
}

// Pending reports whether the message is an optimistic entry that has not
// been acknowledged by the backend.
func (m Message) Pending() bool {
	return strings.HasPrefix(m.ID, TempIDPrefix)
}

// Draft is the input to an optimistic send: text and/or one attachment.
type Draft struct {
	Content        string
	AttachmentURL  string
	AttachmentKind message.AttachmentKind
	// ClientMsgID, when set, reuses an existing correlation id so the
	// re-send resolves to the same persisted record instead of a new one.
	ClientMsgID string
}

func (d Draft) empty() bool {
	return strings.TrimSpace(d.Content) == "" && d.AttachmentURL == ""
}

// Session carries the identity the reconciler acts on behalf of. It is
// injected at construction instead of read from ambient state.
type Session struct {
	UserID uuid.UUID
}

// FromEntity converts a persisted record into its view form.
func FromEntity(m message.Message) Message {
	out := Message{
		ID:             m.ID.String(),
		ClientMsgID:    m.ClientMsgID,
		SenderID:       m.SenderID,
		AttachmentKind: m.AttachmentKind,
		Type:           m.Type,
		Status:         m.Status,
		Saved:          m.Saved,
		Deleted:        m.Deleted,
		Edited:         m.Edited,
		CreatedAt:      m.CreatedAt,
	}
	if m.Content != nil {
		out.Content = *m.Content
	}
	if m.AttachmentURL != nil {
		out.AttachmentURL = *m.AttachmentURL
	}
	return out
}
