package notify

import (
	"context"
	"encoding/json"
	"time"

	"keepsake/internal/feed"
	"keepsake/internal/repository"
	kevents "keepsake/pkg/events"
	"keepsake/pkg/logger"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "notify:dedup:"

// Dispatcher turns domain events into partner pushes. Two trigger paths
// can observe the same event (the send path and the broker); a Redis
// SETNX window keyed like the in-process deduper suppresses the repeat.
type Dispatcher struct {
	relay    *RelayClient
	redis    *goredis.Client
	userRepo repository.UserRepository
	logger   *logger.Logger
	window   time.Duration
}

func NewDispatcher(relay *RelayClient, redis *goredis.Client, userRepo repository.UserRepository, l *logger.Logger) *Dispatcher {
	return &Dispatcher{
		relay:    relay,
		redis:    redis,
		userRepo: userRepo,
		logger:   l,
		window:   feed.DedupWindow,
	}
}

// HandleEvent is subscribed to the broker's event channel. Every failure
// path logs and returns nil: push dispatch never fails the primary action.
func (d *Dispatcher) HandleEvent(ctx context.Context, event kevents.Event) error {
	switch event.Type {
	case kevents.EventMessageNew:
		d.notifyMessage(ctx, event)
	case kevents.EventCapsuleUnlocked:
		d.notifyCapsule(ctx, event)
	}
	return nil
}

func (d *Dispatcher) notifyMessage(ctx context.Context, event kevents.Event) {
	var msg struct {
		ID       string    `json:"id"`
		SenderID uuid.UUID `json:"sender_id"`
		Content  string    `json:"content"`
	}
	if !decodePayload(event.Payload, &msg) {
		return
	}

	key := feed.NotificationKey(msg.ID, msg.SenderID, time.Now())
	if !d.register(ctx, key) {
		return
	}

	partner, err := d.userRepo.GetPartner(ctx, msg.SenderID)
	if err != nil {
		d.logger.Warnf("push skipped, no partner for %s: %v", msg.SenderID, err)
		return
	}

	sender, err := d.userRepo.GetByID(ctx, msg.SenderID)
	if err != nil {
		return
	}

	body := msg.Content
	if body == "" {
		body = "sent you something"
	}
	d.send(ctx, partner.ID, sender.DisplayName, body, map[string]string{
		"type":       "message",
		"message_id": msg.ID,
	})
}

func (d *Dispatcher) notifyCapsule(ctx context.Context, event kevents.Event) {
	var post struct {
		ID       string    `json:"id"`
		AuthorID uuid.UUID `json:"author_id"`
		Title    string    `json:"title"`
	}
	if !decodePayload(event.Payload, &post) {
		return
	}

	if !d.register(ctx, "capsule:"+post.ID) {
		return
	}

	partner, err := d.userRepo.GetPartner(ctx, post.AuthorID)
	if err != nil {
		return
	}
	d.send(ctx, partner.ID, "A capsule just unlocked", post.Title, map[string]string{
		"type":       "capsule",
		"capsule_id": post.ID,
	})
}

// register claims the dedup key; false means a dispatch for this key
// already happened within the window.
func (d *Dispatcher) register(ctx context.Context, key string) bool {
	if d.redis == nil {
		return true
	}
	ok, err := d.redis.SetNX(ctx, dedupKeyPrefix+key, 1, d.window).Result()
	if err != nil {
		// Dedup is best-effort; a Redis error must not swallow the push.
		d.logger.Warnf("notification dedup check failed: %v", err)
		return true
	}
	return ok
}

// send is fire-and-forget: failures are logged, never propagated.
func (d *Dispatcher) send(ctx context.Context, target uuid.UUID, title, body string, data map[string]string) {
	if d.relay == nil {
		return
	}
	if err := d.relay.Send(ctx, target, title, body, data); err != nil {
		d.logger.Warnf("push dispatch to %s failed: %v", target, err)
	}
}

func decodePayload(payload interface{}, out interface{}) bool {
	raw, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return true
}
