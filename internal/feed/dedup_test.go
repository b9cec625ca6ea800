package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDedupSuppressesWithinWindow(t *testing.T) {
	clock := newFakeClock()
	d := NewNotificationDeduper(30*time.Second, clock.Now)

	assert.True(t, d.Register("msg-1"))
	assert.False(t, d.Register("msg-1"))

	clock.Advance(31 * time.Second)
	assert.True(t, d.Register("msg-1"))
}

func TestDedupDistinctKeysProceed(t *testing.T) {
	d := NewNotificationDeduper(30*time.Second, newFakeClock().Now)
	assert.True(t, d.Register("msg-1"))
	assert.True(t, d.Register("msg-2"))
}

func TestDedupConcurrentInsertionIsIdempotent(t *testing.T) {
	d := NewNotificationDeduper(30*time.Second, newFakeClock().Now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	proceeds := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Register("shared-key") {
				mu.Lock()
				proceeds++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, proceeds)
}

func TestNotificationKeyDerivation(t *testing.T) {
	sender := uuid.New()
	now := time.Now()

	assert.Equal(t, "msg-42", NotificationKey("msg-42", sender, now))

	synthesized := NotificationKey("", sender, now)
	assert.Contains(t, synthesized, sender.String())
	assert.NotEqual(t, synthesized, NotificationKey("", sender, now))
}
