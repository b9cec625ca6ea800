package events

import "context"

const (
	EventMessageNew       = "message.new"
	EventMessageEdited    = "message.edited"
	EventMessageDeleted   = "message.deleted"
	EventMessageReaction  = "message.reaction"
	EventMessageDelivered = "message.delivered"
	EventMessageRead      = "message.read"
	EventCapsuleUnlocked  = "capsule.unlocked"
	EventCalendarChanged  = "calendar.changed"
	EventPresenceChanged  = "presence.changed"
)

type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

type Handler func(ctx context.Context, event Event) error

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler Handler) error
}

type Broker interface {
	Publisher
	Subscriber
}
