package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "user_settings.yaml"))
}

func TestReadDefaultsWhenFileAbsent(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	userSettings, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, Default(), userSettings)
}

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	want := UserSettings{
		DisplayTimestamp: false,
		NameFormat:       NameScientific,
		TimeFormat:       TimeFull,
	}
	require.NoError(t, store.Write(want))

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	err := store.Write(UserSettings{NameFormat: "fancy", TimeFormat: TimeFull})
	require.Error(t, err)

	err = store.Write(UserSettings{NameFormat: NameBoth, TimeFormat: "never"})
	require.Error(t, err)

	// Nothing must have been persisted by the failed writes.
	got, readErr := store.Read()
	require.NoError(t, readErr)
	assert.Equal(t, Default(), got)
}

func TestReadCorruptFileIsAnError(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, os.WriteFile(store.path, []byte("{not yaml: ["), 0o644))
	_, err := store.Read()
	require.Error(t, err)
}

func TestReadInvalidPersistedValueIsAnError(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, os.WriteFile(store.path, []byte("nameformat: fancy\n"), 0o644))
	_, err := store.Read()
	require.Error(t, err)
}

func TestWatchEmitsCurrentThenChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watch := store.Watch(ctx)

	// First emission is the current state, defaults here.
	select {
	case got := <-watch:
		assert.Equal(t, Default(), got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial settings emission")
	}

	want := UserSettings{
		DisplayTimestamp: true,
		NameFormat:       NameCommon,
		TimeFormat:       TimeDayMonthYear,
	}
	require.NoError(t, store.Write(want))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case got, ok := <-watch:
			require.True(t, ok, "watch closed before emitting the written settings")
			if got == want {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for settings change emission")
		}
	}
}

func TestWatchClosesOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	watch := store.Watch(ctx)

	select {
	case <-watch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial settings emission")
	}

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

func TestFormatName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		format NameFormat
		want   string
	}{
		{NameScientific, "Boletus edulis"},
		{NameCommon, "Porcini"},
		{NameBoth, "Porcini (Boletus edulis)"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatName("Boletus edulis", "Porcini", tc.format))
	}
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	millis := time.Date(2024, time.March, 7, 14, 30, 5, 0, time.Local).UnixMilli()

	assert.Equal(t, "March, 2024", FormatTimestamp(millis, TimeMonthYear))
	assert.Equal(t, "07/03/2024", FormatTimestamp(millis, TimeDayMonthYear))
	assert.Equal(t, "14:30:05 07/03/2024", FormatTimestamp(millis, TimeFull))
}
