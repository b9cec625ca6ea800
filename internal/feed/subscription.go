package feed

// Source is a live query over the message window: it yields the full
// current result set on every change, not a diff.
type Source interface {
	// Subscribe registers a snapshot handler and returns an unsubscribe
	// handle. After unsubscribe no further snapshots are delivered.
	Subscribe(handler func(snapshot []Message)) (unsubscribe func(), err error)
}

// Attach wires the reconciler to a snapshot source. The returned handle
// tears down the subscription and closes the reconciler; in-flight sends
// are allowed to finish in the background.
func (r *Reconciler) Attach(src Source) (func(), error) {
	unsubscribe, err := src.Subscribe(r.ApplySnapshot)
	if err != nil {
		return nil, err
	}
	return func() {
		unsubscribe()
		r.Close()
	}, nil
}
