package services

import (
	"context"
	"testing"
	"time"

	"keepsake/internal/domain/message"
	keepsake_errors "keepsake/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessageRepo backs the idempotency tests: only the client_msg_id
// lookup and create paths matter, everything else is inert.
type fakeMessageRepo struct {
	byClientMsgID map[string]message.Message
	lookupErr     error
	creates       int
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *message.Message) error {
	f.creates++
	return nil
}

func (f *fakeMessageRepo) GetByClientMsgID(ctx context.Context, clientMsgID string) (message.Message, error) {
	if f.lookupErr != nil {
		return message.Message{}, f.lookupErr
	}
	if m, ok := f.byClientMsgID[clientMsgID]; ok {
		return m, nil
	}
	return message.Message{}, keepsake_errors.ErrNotFound
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	return message.Message{}, keepsake_errors.ErrNotFound
}

func (f *fakeMessageRepo) GetWindow(ctx context.Context, since time.Time, limit int) ([]message.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	return nil
}

func (f *fakeMessageRepo) SoftDelete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeMessageRepo) SetReaction(ctx context.Context, id uuid.UUID, emoji string, reactorID uuid.UUID) error {
	return nil
}

func (f *fakeMessageRepo) ClearReaction(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeMessageRepo) SetSaved(ctx context.Context, id uuid.UUID, saved bool) error { return nil }

func (f *fakeMessageRepo) MarkDelivered(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeMessageRepo) MarkRead(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeMessageRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error { return nil }

func TestSendReturnsExistingRecordForKnownClientMsgID(t *testing.T) {
	sender := uuid.New()
	existing := message.Message{
		ID:          uuid.New(),
		SenderID:    sender,
		ClientMsgID: "c-1",
		Content:     strPtr("hello"),
		Status:      message.StatusSent,
		CreatedAt:   time.Now(),
	}
	repo := &fakeMessageRepo{byClientMsgID: map[string]message.Message{"c-1": existing}}

	// nil db: a re-send with a known correlation id must resolve before
	// any transaction starts, so no second row can ever be written.
	svc := NewMessageService(nil, repo, 0, 0)

	got, err := svc.Send(context.Background(), SendMessageInput{
		SenderID:    sender,
		ClientMsgID: "c-1",
		Content:     "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	assert.Zero(t, repo.creates)
}

func TestSendPropagatesLookupFailure(t *testing.T) {
	repo := &fakeMessageRepo{lookupErr: keepsake_errors.ErrServiceUnavailable}
	svc := NewMessageService(nil, repo, 0, 0)

	_, err := svc.Send(context.Background(), SendMessageInput{
		SenderID:    uuid.New(),
		ClientMsgID: "c-2",
		Content:     "hello",
	})
	assert.ErrorIs(t, err, keepsake_errors.ErrServiceUnavailable)
	assert.Zero(t, repo.creates)
}

func TestSendValidatesInput(t *testing.T) {
	svc := NewMessageService(nil, &fakeMessageRepo{}, 0, 0)

	_, err := svc.Send(context.Background(), SendMessageInput{Content: "no sender"})
	assert.ErrorIs(t, err, keepsake_errors.ErrUnauthorized)

	_, err = svc.Send(context.Background(), SendMessageInput{SenderID: uuid.New(), Content: "   "})
	assert.ErrorIs(t, err, keepsake_errors.ErrInvalidInput)
}

func strPtr(s string) *string { return &s }
