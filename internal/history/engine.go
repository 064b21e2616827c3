// Package history composes record store queries with client-side text and
// date-range filtering and exposes the result as a live state stream.
//
// A query is a declarative description; every change to it or to the
// underlying store re-derives the result list. Switch-to-latest: setting a
// new query cancels interest in the previous one, stale results are never
// delivered.
package history

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Mark0fPride/app-cnn/internal/datastore"
	"github.com/Mark0fPride/app-cnn/internal/taxonomy"
)

// DefaultRange is the trailing window queried when no explicit date range
// is set.
const DefaultRange = 30 * 24 * time.Hour

// Query describes what the user is looking at: free text matched against
// scientific and common names, a capture-time range, and a flag that
// widens the view to everything regardless of the range.
type Query struct {
	Text    string
	From    int64 // epoch milliseconds, inclusive
	To      int64 // epoch milliseconds, inclusive
	ShowAll bool
}

// DefaultQuery returns a blank-text query over the trailing default range.
func DefaultQuery() Query {
	now := time.Now()
	return Query{
		From: now.Add(-DefaultRange).UnixMilli(),
		To:   now.UnixMilli(),
	}
}

// Engine turns query descriptions into live, filtered record streams.
type Engine struct {
	store    datastore.Interface
	taxonomy *taxonomy.Taxonomy

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	out        chan State
	closed     bool
}

// New creates a history engine over the given store. The stream starts in
// the Idle state until the first SetQuery.
func New(store datastore.Interface, tax *taxonomy.Taxonomy) *Engine {
	e := &Engine{
		store:    store,
		taxonomy: tax,
		out:      make(chan State, 1),
	}
	e.out <- Idle{}
	return e
}

// States returns the engine's state stream. The channel carries the newest
// state; a slow consumer never observes a superseded one.
func (e *Engine) States() <-chan State {
	return e.out
}

// SetQuery replaces the active query. The previous query's watch is
// cancelled and any of its in-flight results are discarded.
func (e *Engine) SetQuery(q Query) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	if e.cancel != nil {
		e.cancel()
	}
	e.generation++
	generation := e.generation

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.emitLocked(generation, Loading{Query: q})

	var watch <-chan []datastore.Identification
	if q.ShowAll {
		watch = e.store.WatchAll(ctx)
	} else {
		watch = e.store.WatchByDateRange(ctx, q.From, q.To)
	}

	go func() {
		for records := range watch {
			e.emit(generation, Results{Query: q, Records: e.filter(q, records)})
		}
	}()
}

// Reset returns the engine to the default query.
func (e *Engine) Reset() {
	e.SetQuery(DefaultQuery())
}

// Close stops the active watch and closes the state stream.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.generation++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	close(e.out)
}

// emit delivers state if it still belongs to the current generation.
func (e *Engine) emit(generation uint64, state State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitLocked(generation, state)
}

func (e *Engine) emitLocked(generation uint64, state State) {
	if e.closed || generation != e.generation {
		// superseded by a newer query, drop silently
		return
	}
	for {
		select {
		case e.out <- state:
			return
		default:
		}
		select {
		case <-e.out:
		default:
		}
	}
}

// filter applies the client-side text filter: case-insensitive substring
// match against the scientific name or its resolved common name. Blank
// text matches everything.
func (e *Engine) filter(q Query, records []datastore.Identification) []datastore.Identification {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text == "" {
		return records
	}
	filtered := make([]datastore.Identification, 0, len(records))
	for _, record := range records {
		scientific := strings.ToLower(record.ScientificName)
		common := strings.ToLower(e.taxonomy.CommonName(record.ScientificName))
		if strings.Contains(scientific, text) || strings.Contains(common, text) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// Delete removes a single record; watchers re-emit automatically.
func (e *Engine) Delete(record *datastore.Identification) error {
	return e.store.Delete(record)
}

// DeleteByIDs removes exactly the records with the given ids.
func (e *Engine) DeleteByIDs(ids []uint) error {
	return e.store.DeleteByIDs(ids)
}

// DeleteAll clears the history.
func (e *Engine) DeleteAll() error {
	return e.store.DeleteAll()
}
