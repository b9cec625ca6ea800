package feed

import "time"

// clusterGap is the largest same-sender silence that still renders as one
// visual cluster.
const clusterGap = 5 * time.Minute

// GroupByDay returns the indices before which a day divider is emitted:
// always index 0, then wherever the local calendar date changes from the
// previous message.
func GroupByDay(messages []Message) []int {
	var dividers []int
	for i, m := range messages {
		if i == 0 {
			dividers = append(dividers, 0)
			continue
		}
		prev := messages[i-1].CreatedAt.Local()
		cur := m.CreatedAt.Local()
		if prev.Year() != cur.Year() || prev.YearDay() != cur.YearDay() {
			dividers = append(dividers, i)
		}
	}
	return dividers
}

// ShouldShowClusterTimestamp reports whether a timestamp label renders
// above the message at index i: the first message, a sender change, or a
// same-sender gap above clusterGap.
func ShouldShowClusterTimestamp(messages []Message, i int) bool {
	if i <= 0 || i >= len(messages) {
		return true
	}
	prev := messages[i-1]
	cur := messages[i]
	if prev.SenderID != cur.SenderID {
		return true
	}
	return cur.CreatedAt.Sub(prev.CreatedAt) > clusterGap
}
