package feed

import (
	"testing"
	"time"

	"keepsake/internal/domain/message"
	keepsake_errors "keepsake/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	me      = uuid.New()
	partner = uuid.New()
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func persistedMsg(sender uuid.UUID, content string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		SenderID:  sender,
		Content:   content,
		Type:      message.TypeText,
		Status:    message.StatusSent,
		CreatedAt: at,
	}
}

func newTestReconciler(clock *fakeClock, onReceive func(Message)) *Reconciler {
	return NewReconciler(Session{UserID: me}, Options{
		Now:       clock.Now,
		OnReceive: onReceive,
	})
}

func TestSendOptimisticAppearsImmediately(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)

	tempID, err := r.SendOptimistic(Draft{Content: "hello"})
	require.NoError(t, err)
	assert.Contains(t, tempID, TempIDPrefix)

	view := r.View()
	require.Len(t, view, 1)
	assert.Equal(t, tempID, view[0].ID)
	assert.Equal(t, message.StatusSending, view[0].Status)
	assert.True(t, view[0].Pending())
}

func TestSendOptimisticRequiresSessionAndContent(t *testing.T) {
	r := NewReconciler(Session{}, Options{})
	_, err := r.SendOptimistic(Draft{Content: "hello"})
	assert.ErrorIs(t, err, keepsake_errors.ErrUnauthorized)

	r = newTestReconciler(newFakeClock(), nil)
	_, err = r.SendOptimistic(Draft{Content: "   "})
	assert.ErrorIs(t, err, keepsake_errors.ErrInvalidInput)
}

func TestSnapshotResolvesPlaceholderByCorrelationID(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)

	_, err := r.SendOptimistic(Draft{Content: "hello"})
	require.NoError(t, err)
	pending := r.View()[0]

	server := persistedMsg(me, "hello", clock.Now())
	server.ClientMsgID = pending.ClientMsgID
	r.ApplySnapshot([]Message{server})

	view := r.View()
	require.Len(t, view, 1)
	assert.Equal(t, server.ID, view[0].ID)
	assert.False(t, view[0].Pending())
}

func TestSnapshotFallbackRemovesOldestSendingOnly(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)

	first, err := r.SendOptimistic(Draft{Content: "first"})
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, err := r.SendOptimistic(Draft{Content: "second"})
	require.NoError(t, err)
	clock.Advance(time.Second)
	failed, err := r.SendOptimistic(Draft{Content: "doomed"})
	require.NoError(t, err)
	require.NoError(t, r.MarkFailed(failed))

	// Persisted counterpart without a correlation id: heuristic removes
	// the oldest still-sending placeholder, never a failed one.
	r.ApplySnapshot([]Message{persistedMsg(me, "first", clock.Now())})

	ids := map[string]bool{}
	for _, m := range r.View() {
		ids[m.ID] = true
	}
	assert.False(t, ids[first])
	assert.True(t, ids[second])
	assert.True(t, ids[failed])
}

func TestViewAscendingOrder(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)

	base := clock.Now()
	// Backend delivers newest-first.
	r.ApplySnapshot([]Message{
		persistedMsg(partner, "third", base.Add(2*time.Minute)),
		persistedMsg(me, "second", base.Add(time.Minute)),
		persistedMsg(partner, "first", base),
	})

	view := r.View()
	require.Len(t, view, 3)
	for i := 1; i < len(view); i++ {
		assert.False(t, view[i].CreatedAt.Before(view[i-1].CreatedAt))
	}
	assert.Equal(t, "first", view[0].Content)
	assert.Equal(t, "third", view[2].Content)
}

func TestRetryFailedTextMessage(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)

	tempID, err := r.SendOptimistic(Draft{Content: "Hello"})
	require.NoError(t, err)
	require.NoError(t, r.MarkFailed(tempID))

	view := r.View()
	require.Len(t, view, 1)
	assert.Equal(t, message.StatusFailed, view[0].Status)

	draft, err := r.Retry(tempID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", draft.Content)
	assert.Equal(t, message.StatusSending, r.View()[0].Status)

	// Reconnect: the write succeeds and the snapshot catches up.
	serverID := uuid.New()
	require.NoError(t, r.MarkSent(tempID, serverID))

	view = r.View()
	require.Len(t, view, 1)
	assert.Equal(t, serverID.String(), view[0].ID)
	assert.Equal(t, "Hello", view[0].Content)
	assert.Equal(t, message.StatusSent, view[0].Status)
}

func TestRetryPreservesCorrelationID(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)

	tempID, err := r.SendOptimistic(Draft{Content: "again"})
	require.NoError(t, err)
	original := r.View()[0].ClientMsgID
	require.NotEmpty(t, original)
	require.NoError(t, r.MarkFailed(tempID))

	draft, err := r.Retry(tempID)
	require.NoError(t, err)
	assert.Equal(t, original, draft.ClientMsgID)

	// A send composed from the returned draft carries the same id, so the
	// backend resolves it to the original record instead of a second one.
	r2 := newTestReconciler(clock, nil)
	_, err = r2.SendOptimistic(draft)
	require.NoError(t, err)
	assert.Equal(t, original, r2.View()[0].ClientMsgID)
}

func TestRetryRejectsAttachmentSends(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)

	tempID, err := r.SendOptimistic(Draft{
		AttachmentURL:  "https://cdn.example.com/photo.jpg",
		AttachmentKind: message.AttachmentImage,
	})
	require.NoError(t, err)

	// Upload failed before any document write.
	require.NoError(t, r.MarkFailed(tempID))

	_, err = r.Retry(tempID)
	assert.ErrorIs(t, err, keepsake_errors.ErrNotRetryable)

	view := r.View()
	require.Len(t, view, 1)
	assert.Equal(t, message.StatusFailed, view[0].Status)
}

func TestRetryRequiresFailedStatus(t *testing.T) {
	r := newTestReconciler(newFakeClock(), nil)
	tempID, err := r.SendOptimistic(Draft{Content: "hi"})
	require.NoError(t, err)

	_, err = r.Retry(tempID)
	assert.ErrorIs(t, err, keepsake_errors.ErrInvalidTransition)

	_, err = r.Retry("temp-unknown")
	assert.ErrorIs(t, err, keepsake_errors.ErrNotFound)
}

func TestMarkSentKeepsStandInUntilSnapshot(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)

	tempID, err := r.SendOptimistic(Draft{Content: "ack me"})
	require.NoError(t, err)
	serverID := uuid.New()
	require.NoError(t, r.MarkSent(tempID, serverID))

	view := r.View()
	require.Len(t, view, 1)
	assert.Equal(t, serverID.String(), view[0].ID)

	// Snapshot catches up with the same server record: still one entry.
	server := persistedMsg(me, "ack me", clock.Now())
	server.ID = serverID.String()
	r.ApplySnapshot([]Message{server})
	assert.Len(t, r.View(), 1)
}

func TestRetentionDropsOldUnlessSaved(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)

	old := persistedMsg(partner, "stale", clock.Now().Add(-25*time.Hour))
	saved := persistedMsg(partner, "keep me", clock.Now().Add(-48*time.Hour))
	saved.Saved = true
	fresh := persistedMsg(partner, "fresh", clock.Now().Add(-time.Hour))

	r.ApplySnapshot([]Message{fresh, old, saved})

	view := r.View()
	require.Len(t, view, 2)
	assert.Equal(t, "keep me", view[0].Content)
	assert.Equal(t, "fresh", view[1].Content)
}

func TestRetentionCapsMostRecent(t *testing.T) {
	clock := newFakeClock()
	r := NewReconciler(Session{UserID: me}, Options{Now: clock.Now, MaxMessages: 3})

	var snapshot []Message
	base := clock.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		snapshot = append(snapshot, persistedMsg(partner, "msg", base.Add(time.Duration(i)*time.Minute)))
	}
	r.ApplySnapshot(snapshot)

	view := r.View()
	require.Len(t, view, 3)
	assert.Equal(t, snapshot[2].ID, view[0].ID)
	assert.Equal(t, snapshot[4].ID, view[2].ID)
}

func TestOnReceiveFiresOncePerForeignMessage(t *testing.T) {
	clock := newFakeClock()
	var received []string
	r := newTestReconciler(clock, func(m Message) {
		received = append(received, m.ID)
	})

	mine := persistedMsg(me, "mine", clock.Now())
	theirs := persistedMsg(partner, "theirs", clock.Now().Add(time.Second))

	r.ApplySnapshot([]Message{theirs, mine})
	r.ApplySnapshot([]Message{theirs, mine})

	require.Len(t, received, 1)
	assert.Equal(t, theirs.ID, received[0])
}

func TestCloseStopsSnapshots(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)

	r.ApplySnapshot([]Message{persistedMsg(partner, "before", clock.Now())})
	r.Close()
	r.ApplySnapshot([]Message{
		persistedMsg(partner, "before", clock.Now()),
		persistedMsg(partner, "after", clock.Now().Add(time.Second)),
	})

	view := r.View()
	require.Len(t, view, 1)
	assert.Equal(t, "before", view[0].Content)
}

type stubSource struct {
	handler func([]Message)
	stopped bool
}

func (s *stubSource) Subscribe(handler func([]Message)) (func(), error) {
	s.handler = handler
	return func() { s.stopped = true }, nil
}

func TestAttachDeliversAndUnsubscribes(t *testing.T) {
	clock := newFakeClock()
	r := newTestReconciler(clock, nil)
	src := &stubSource{}

	stop, err := r.Attach(src)
	require.NoError(t, err)
	require.NotNil(t, src.handler)

	src.handler([]Message{persistedMsg(partner, "live", clock.Now())})
	assert.Len(t, r.View(), 1)

	stop()
	assert.True(t, src.stopped)
	src.handler([]Message{
		persistedMsg(partner, "live", clock.Now()),
		persistedMsg(partner, "late", clock.Now().Add(time.Second)),
	})
	assert.Len(t, r.View(), 1)
}
