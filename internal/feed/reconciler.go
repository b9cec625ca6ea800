package feed

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"keepsake/internal/domain/message"
	keepsake_errors "keepsake/pkg/errors"

	"github.com/google/uuid"
)

// Options tune the reconciler's window and clock. Zero values fall back
// to the defaults below.
type Options struct {
	// Window is the rolling retention span; messages older than this are
	// dropped from the view unless saved.
	Window time.Duration
	// MaxMessages caps the persisted half at the most recent N.
	MaxMessages int
	// Now overrides the clock, for tests.
	Now func() time.Time
	// OnReceive fires exactly once per newly observed message that was
	// not authored by the session user.
	OnReceive func(Message)
}

const (
	defaultWindow      = 24 * time.Hour
	defaultMaxMessages = 200
)

// Reconciler merges the streamed persisted window with the local
// optimistic-send buffer. The subscription is the single writer of the
// persisted half and the send path the single writer of the pending half;
// both go through the reconciler's own entry points under one lock.
type Reconciler struct {
	mu        sync.Mutex
	session   Session
	window    time.Duration
	maxCount  int
	now       func() time.Time
	onReceive func(Message)

	persisted []Message
	pending   []Message
	announced map[string]struct{}
	closed    bool
}

func NewReconciler(session Session, opts Options) *Reconciler {
	if opts.Window <= 0 {
		opts.Window = defaultWindow
	}
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = defaultMaxMessages
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Reconciler{
		session:   session,
		window:    opts.Window,
		maxCount:  opts.MaxMessages,
		now:       opts.Now,
		onReceive: opts.OnReceive,
		announced: make(map[string]struct{}),
	}
}

// ApplySnapshot replaces the persisted half with the full current result
// set. The backend delivers newest-first; the reconciler reverses to
// ascending display order, applies retention, reconciles optimistic
// placeholders and announces newly observed foreign messages once.
func (r *Reconciler) ApplySnapshot(serverMessages []Message) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}

	snapshot := make([]Message, len(serverMessages))
	copy(snapshot, serverMessages)
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.Before(snapshot[j].CreatedAt)
	})
	snapshot = r.retain(snapshot)

	var announce []Message
	for _, m := range snapshot {
		if _, ok := r.announced[m.ID]; ok {
			continue
		}
		r.announced[m.ID] = struct{}{}
		if m.SenderID == r.session.UserID {
			r.resolvePlaceholder(m)
		} else if !m.Deleted {
			announce = append(announce, m)
		}
	}

	r.persisted = snapshot
	onReceive := r.onReceive
	r.mu.Unlock()

	if onReceive != nil {
		for _, m := range announce {
			onReceive(m)
		}
	}
}

// resolvePlaceholder removes the optimistic entry matching a newly
// persisted local message: by correlation id when present, otherwise the
// oldest still-sending entry. Failed entries are never removed by the
// fallback; they stay visible until retried.
func (r *Reconciler) resolvePlaceholder(persisted Message) {
	if persisted.ClientMsgID != "" {
		for i, p := range r.pending {
			if p.ClientMsgID == persisted.ClientMsgID {
				r.pending = append(r.pending[:i], r.pending[i+1:]...)
				return
			}
		}
		return
	}
	for i, p := range r.pending {
		if p.Status == message.StatusSending {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return
		}
	}
}

// retain applies the rolling window plus saved-forever policy and the
// most-recent-N cap to an ascending slice.
func (r *Reconciler) retain(msgs []Message) []Message {
	cutoff := r.now().Add(-r.window)
	kept := msgs[:0]
	for _, m := range msgs {
		if m.Saved || !m.CreatedAt.Before(cutoff) {
			kept = append(kept, m)
		}
	}
	if len(kept) > r.maxCount {
		kept = kept[len(kept)-r.maxCount:]
	}
	return kept
}

// SendOptimistic inserts a pending entry for the draft and returns its
// temporary id. The entry renders immediately with status SENDING.
func (r *Reconciler) SendOptimistic(draft Draft) (string, error) {
	if r.session.UserID == uuid.Nil {
		return "", keepsake_errors.ErrUnauthorized
	}
	if draft.empty() {
		return "", keepsake_errors.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clientMsgID := draft.ClientMsgID
	if clientMsgID == "" {
		clientMsgID = uuid.NewString()
	}

	now := r.now()
	entry := Message{
		ID:             fmt.Sprintf("%s%d-%s", TempIDPrefix, now.UnixMilli(), uuid.NewString()[:8]),
		ClientMsgID:    clientMsgID,
		SenderID:       r.session.UserID,
		Content:        draft.Content,
		AttachmentURL:  draft.AttachmentURL,
		AttachmentKind: draft.AttachmentKind,
		Type:           resolveDraftType(draft),
		Status:         message.StatusSending,
		CreatedAt:      now,
	}
	r.pending = append(r.pending, entry)
	return entry.ID, nil
}

// MarkFailed flags a pending entry after a failed write. The entry stays
// in the view with a retry affordance; it is never silently dropped.
func (r *Reconciler) MarkFailed(tempID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.pending {
		if p.ID == tempID {
			if !message.CanTransition(p.Status, message.StatusFailed) {
				return keepsake_errors.ErrInvalidTransition
			}
			r.pending[i].Status = message.StatusFailed
			return nil
		}
	}
	return keepsake_errors.ErrNotFound
}

// MarkSent resolves a pending entry with the server-assigned id once the
// write is acknowledged. The persisted record takes over in the view; if
// the snapshot stream has not delivered it yet a SENT stand-in is kept so
// the message never disappears between the ack and the next snapshot.
func (r *Reconciler) MarkSent(tempID string, serverID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.pending {
		if p.ID == tempID {
			entry := p
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			if _, ok := r.announced[serverID.String()]; ok {
				return nil
			}
			entry.ID = serverID.String()
			entry.Status = message.StatusSent
			r.announced[entry.ID] = struct{}{}
			r.persisted = append(r.persisted, entry)
			return nil
		}
	}
	return keepsake_errors.ErrNotFound
}

// Retry re-enters the sending state for a failed text-only entry,
// preserving its content and correlation id so the re-sent write resolves
// to the same record. Attachment sends must be recomposed.
func (r *Reconciler) Retry(tempID string) (Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.pending {
		if p.ID != tempID {
			continue
		}
		if p.Status != message.StatusFailed {
			return Draft{}, keepsake_errors.ErrInvalidTransition
		}
		if p.AttachmentURL != "" {
			return Draft{}, keepsake_errors.ErrNotRetryable
		}
		r.pending[i].Status = message.StatusSending
		r.pending[i].CreatedAt = r.now()
		return Draft{Content: p.Content, ClientMsgID: p.ClientMsgID}, nil
	}
	return Draft{}, keepsake_errors.ErrNotFound
}

// View returns the merged feed in ascending timestamp order. The two
// halves are merged read-only; callers own the returned slice.
func (r *Reconciler) View() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := make([]Message, 0, len(r.persisted)+len(r.pending))
	merged = append(merged, r.persisted...)
	merged = append(merged, r.pending...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})
	return merged
}

// Close stops the reconciler; later snapshots are ignored. In-flight
// sends complete or fail in the background.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

func resolveDraftType(d Draft) message.MessageType {
	var content *string
	if d.Content != "" {
		content = &d.Content
	}
	return message.ResolveType(content, d.AttachmentKind)
}
