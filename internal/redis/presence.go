package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// PresenceStatus is derived, not stored: a user is online iff their last
// heartbeat is within the threshold.
type PresenceStatus struct {
	UserID     string    `json:"user_id"`
	IsOnline   bool      `json:"is_online"`
	LastActive time.Time `json:"last_active"`
}

// PresenceStore keeps last-active heartbeats in Redis.
type PresenceStore struct {
	client    *goredis.Client
	threshold time.Duration
}

const lastActiveKeyPrefix = "presence:last_active:"

func NewPresenceStore(client *goredis.Client, threshold time.Duration) *PresenceStore {
	if threshold <= 0 {
		threshold = 2 * time.Minute
	}
	return &PresenceStore{client: client, threshold: threshold}
}

// Heartbeat refreshes the viewer's last-active timestamp. The key expires
// on its own well past the threshold so stale users cost nothing.
func (p *PresenceStore) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	key := lastActiveKey(userID)
	return p.client.Set(ctx, key, time.Now().UTC().Format(time.RFC3339Nano), 24*time.Hour).Err()
}

// Get returns the derived presence for a user.
func (p *PresenceStore) Get(ctx context.Context, userID uuid.UUID) (PresenceStatus, error) {
	status := PresenceStatus{UserID: userID.String()}

	raw, err := p.client.Get(ctx, lastActiveKey(userID)).Result()
	if err == goredis.Nil {
		return status, nil
	}
	if err != nil {
		return status, err
	}

	lastActive, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return status, err
	}
	status.LastActive = lastActive
	status.IsOnline = time.Since(lastActive) <= p.threshold
	return status, nil
}

func lastActiveKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s", lastActiveKeyPrefix, userID)
}
