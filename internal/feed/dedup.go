package feed

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DedupWindow is how long a notification key suppresses repeats.
const DedupWindow = 30 * time.Second

// NotificationDeduper suppresses duplicate outbound push dispatch when
// overlapping trigger paths observe the same logical event. Insertion is
// idempotent: the second attempt within the window reports duplicate.
type NotificationDeduper struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

func NewNotificationDeduper(window time.Duration, now func() time.Time) *NotificationDeduper {
	if window <= 0 {
		window = DedupWindow
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationDeduper{
		window:  window,
		now:     now,
		entries: make(map[string]time.Time),
	}
}

// Register records the key and reports whether dispatch should proceed.
// False means a record for this key already exists within the window.
func (d *NotificationDeduper) Register(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if registered, ok := d.entries[key]; ok && now.Sub(registered) < d.window {
		return false
	}
	d.entries[key] = now

	// Best-effort sweep so the set does not grow unbounded.
	for k, t := range d.entries {
		if now.Sub(t) >= d.window {
			delete(d.entries, k)
		}
	}
	return true
}

// NotificationKey derives the dedup key: the message id when present,
// otherwise a synthesized sender/timestamp/random key.
func NotificationKey(messageID string, senderID uuid.UUID, at time.Time) string {
	if messageID != "" {
		return messageID
	}
	return fmt.Sprintf("%s_%d_%s", senderID, at.UnixMilli(), uuid.NewString()[:8])
}
