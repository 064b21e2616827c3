// watch.go: live query streams over the record store.
//
// Every committed mutation broadcasts a change signal. A watcher runs its
// query, emits the result, then re-runs on each signal. Emission is
// latest-wins: a slow consumer sees the newest result, never a stale one.
package datastore

import (
	"context"
	"sync"
)

// notifier is a minimal broadcast hub for store change signals.
type notifier struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// subscribe registers a change listener. The returned cancel func must be
// called to release the subscription.
func (n *notifier) subscribe() (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]chan struct{})
	}
	id := n.next
	n.next++
	ch := make(chan struct{}, 1)
	n.subs[id] = ch
	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
	return ch, cancel
}

// broadcast signals all subscribers without blocking. A subscriber that
// already has a pending signal is left as is, one signal is enough to
// trigger a re-query.
func (n *notifier) broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// watchQuery runs query once, emits, then re-runs and re-emits on every
// store change until ctx is done. Query errors stop the stream.
func watchQuery[T any](ctx context.Context, ds *DataStore, query func() (T, error)) <-chan T {
	out := make(chan T, 1)
	changes, cancel := ds.changes.subscribe()

	go func() {
		defer close(out)
		defer cancel()
		for {
			result, err := query()
			if err != nil {
				return
			}
			sendLatest(ctx, out, result)

			select {
			case <-ctx.Done():
				return
			case <-changes:
			}
		}
	}()
	return out
}

// sendLatest delivers value on out, replacing an undelivered previous value
// so the consumer always reads the newest state.
func sendLatest[T any](ctx context.Context, out chan T, value T) {
	for {
		select {
		case <-ctx.Done():
			return
		case out <- value:
			return
		default:
		}
		// Buffer full, drop the stale value and retry.
		select {
		case <-out:
		default:
		}
	}
}

// WatchAll emits the full record list on every store change.
func (ds *DataStore) WatchAll(ctx context.Context) <-chan []Identification {
	return watchQuery(ctx, ds, ds.GetAll)
}

// WatchByID emits the record with the given id on every store change,
// nil once it is deleted.
func (ds *DataStore) WatchByID(ctx context.Context, id uint) <-chan *Identification {
	return watchQuery(ctx, ds, func() (*Identification, error) {
		return ds.Get(id)
	})
}

// WatchMostRecent emits the newest record on every store change.
func (ds *DataStore) WatchMostRecent(ctx context.Context) <-chan *Identification {
	return watchQuery(ctx, ds, ds.GetMostRecent)
}

// WatchByDateRange emits the records captured within [from, to] on every
// store change.
func (ds *DataStore) WatchByDateRange(ctx context.Context, from, to int64) <-chan []Identification {
	return watchQuery(ctx, ds, func() ([]Identification, error) {
		return ds.GetByDateRange(from, to)
	})
}
