package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// awaitEmission reads from a watch channel until a value matching the
// predicate arrives. Latest-wins delivery means intermediate states may be
// skipped, so matching on the expected end state is the only stable check.
func awaitEmission[T any](t *testing.T, ch <-chan T, match func(T) bool) T {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case value, ok := <-ch:
			require.True(t, ok, "watch channel closed before expected emission")
			if match(value) {
				return value
			}
		case <-deadline:
			t.Fatal("timed out waiting for watch emission")
		}
	}
}

func TestWatchAllEmitsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := createDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watch := store.WatchAll(ctx)

	// Initial emission reflects the empty store.
	awaitEmission(t, watch, func(records []Identification) bool {
		return len(records) == 0
	})

	require.NoError(t, store.Save(&Identification{ScientificName: "Boletus edulis", CapturedAt: 100}))
	awaitEmission(t, watch, func(records []Identification) bool {
		return len(records) == 1
	})

	require.NoError(t, store.Save(&Identification{ScientificName: "Amanita muscaria", CapturedAt: 200}))
	awaitEmission(t, watch, func(records []Identification) bool {
		return len(records) == 2
	})

	require.NoError(t, store.DeleteAll())
	awaitEmission(t, watch, func(records []Identification) bool {
		return len(records) == 0
	})
}

func TestWatchByIDEmitsNilAfterDelete(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := createDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	record := &Identification{ScientificName: "Cantharellus cibarius", CapturedAt: 100}
	require.NoError(t, store.Save(record))

	watch := store.WatchByID(ctx, record.ID)
	got := awaitEmission(t, watch, func(r *Identification) bool {
		return r != nil
	})
	assert.Equal(t, record.ID, got.ID)

	require.NoError(t, store.Delete(record))
	awaitEmission(t, watch, func(r *Identification) bool {
		return r == nil
	})
}

func TestWatchMostRecentTracksNewest(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := createDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, store.Save(&Identification{ScientificName: "Boletus edulis", CapturedAt: 100}))

	watch := store.WatchMostRecent(ctx)
	awaitEmission(t, watch, func(r *Identification) bool {
		return r != nil && r.ScientificName == "Boletus edulis"
	})

	require.NoError(t, store.Save(&Identification{ScientificName: "Suillus luteus", CapturedAt: 300}))
	awaitEmission(t, watch, func(r *Identification) bool {
		return r != nil && r.ScientificName == "Suillus luteus"
	})
}

func TestWatchClosesOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := createDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())

	watch := store.WatchAll(ctx)
	awaitEmission(t, watch, func(records []Identification) bool {
		return len(records) == 0
	})

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-watch:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond, "watch channel should close after cancel")
}
