package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t time.Time) Message {
	return Message{SenderID: me, CreatedAt: t}
}

func TestGroupByDayEmitsDividerAtBoundaries(t *testing.T) {
	day1 := time.Date(2026, 3, 13, 22, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 3, 14, 1, 0, 0, 0, time.Local)

	msgs := []Message{
		at(day1),
		at(day1.Add(30 * time.Minute)),
		at(day2),
		at(day2.Add(time.Hour)),
	}

	dividers := GroupByDay(msgs)
	assert.Equal(t, []int{0, 2}, dividers)
}

func TestGroupByDayEmptyAndSingle(t *testing.T) {
	assert.Empty(t, GroupByDay(nil))
	assert.Equal(t, []int{0}, GroupByDay([]Message{at(time.Now())}))
}

func TestClusterTimestampFirstMessage(t *testing.T) {
	msgs := []Message{at(time.Now())}
	assert.True(t, ShouldShowClusterTimestamp(msgs, 0))
}

func TestClusterTimestampSameSenderGaps(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	within := []Message{at(base), at(base.Add(4 * time.Minute))}
	assert.False(t, ShouldShowClusterTimestamp(within, 1))

	beyond := []Message{at(base), at(base.Add(6 * time.Minute))}
	assert.True(t, ShouldShowClusterTimestamp(beyond, 1))
}

func TestClusterTimestampSenderChange(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	msgs := []Message{
		{SenderID: me, CreatedAt: base},
		{SenderID: partner, CreatedAt: base.Add(time.Second)},
	}
	assert.True(t, ShouldShowClusterTimestamp(msgs, 1))
}

func TestSimultaneousMessagesFromDifferentSenders(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	msgs := []Message{
		{SenderID: me, CreatedAt: ts},
		{SenderID: partner, CreatedAt: ts},
	}

	// Same day: one divider before the first message only.
	require.Equal(t, []int{0}, GroupByDay(msgs))
	// Sender changed: the second message shows its own timestamp.
	assert.True(t, ShouldShowClusterTimestamp(msgs, 1))
}
