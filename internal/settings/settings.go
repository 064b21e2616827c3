// Package settings persists the user's display preferences as a small YAML
// document and exposes them as a live stream that re-emits on every change.
package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/Mark0fPride/app-cnn/internal/errors"
	"github.com/Mark0fPride/app-cnn/internal/logging"
)

// NameFormat selects how a mushroom name is displayed.
type NameFormat string

const (
	NameScientific NameFormat = "scientific"
	NameCommon     NameFormat = "common"
	NameBoth       NameFormat = "both"
)

// TimeFormat selects how a capture timestamp is displayed.
type TimeFormat string

const (
	TimeMonthYear    TimeFormat = "month-year"
	TimeDayMonthYear TimeFormat = "day-month-year"
	TimeFull         TimeFormat = "full"
)

// UserSettings holds the display preferences. This is presentation state,
// not identification data.
type UserSettings struct {
	DisplayTimestamp bool       `yaml:"displaytimestamp"`
	NameFormat       NameFormat `yaml:"nameformat"`
	TimeFormat       TimeFormat `yaml:"timeformat"`
}

// Default returns the settings used when nothing has been persisted yet.
func Default() UserSettings {
	return UserSettings{
		DisplayTimestamp: true,
		NameFormat:       NameBoth,
		TimeFormat:       TimeMonthYear,
	}
}

// Validate reports the first invalid field value, if any.
func (s *UserSettings) Validate() error {
	switch s.NameFormat {
	case NameScientific, NameCommon, NameBoth:
	default:
		return errors.Newf("invalid name format %q", s.NameFormat).
			Component("settings").
			Category(errors.CategoryValidation).
			Build()
	}
	switch s.TimeFormat {
	case TimeMonthYear, TimeDayMonthYear, TimeFull:
	default:
		return errors.Newf("invalid time format %q", s.TimeFormat).
			Component("settings").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// Store is a durable singleton store for UserSettings backed by a YAML
// file. Reads default when the file is absent.
type Store struct {
	path    string
	mu      sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

// NewStore creates a settings store persisting to path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		subs: make(map[int]chan struct{}),
	}
}

// Read returns the persisted settings, or the defaults when nothing has
// been written yet. A corrupt file is an error, not a silent reset.
func (s *Store) Read() (UserSettings, error) {
	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		return Default(), nil
	case err != nil:
		return Default(), errors.New(fmt.Errorf("reading user settings: %w", err)).
			Component("settings").
			Category(errors.CategorySettings).
			FileContext(s.path).
			Build()
	}

	userSettings := Default()
	if err := yaml.Unmarshal(data, &userSettings); err != nil {
		return Default(), errors.New(fmt.Errorf("parsing user settings: %w", err)).
			Component("settings").
			Category(errors.CategorySettings).
			FileContext(s.path).
			Build()
	}
	if err := userSettings.Validate(); err != nil {
		return Default(), err
	}
	return userSettings, nil
}

// Write persists the settings as a full replace. The file is written to a
// temporary name and renamed so readers never observe a partial document.
func (s *Store) Write(userSettings UserSettings) error {
	if err := userSettings.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(&userSettings)
	if err != nil {
		return errors.New(fmt.Errorf("marshaling user settings: %w", err)).
			Component("settings").
			Category(errors.CategorySettings).
			Build()
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(fmt.Errorf("creating settings directory: %w", err)).
				Component("settings").
				Category(errors.CategoryFileIO).
				FileContext(s.path).
				Build()
		}
	}

	tmp, err := os.CreateTemp(dir, ".user_settings-*.yaml")
	if err != nil {
		return errors.New(fmt.Errorf("creating temporary settings file: %w", err)).
			Component("settings").
			Category(errors.CategoryFileIO).
			Build()
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.New(fmt.Errorf("writing user settings: %w", err)).
			Component("settings").
			Category(errors.CategoryFileIO).
			Build()
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.New(fmt.Errorf("replacing user settings: %w", err)).
			Component("settings").
			Category(errors.CategoryFileIO).
			FileContext(s.path).
			Build()
	}

	s.notify()
	return nil
}

// notify signals all watchers without blocking.
func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Store) subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

// Watch emits the current settings immediately and re-emits whenever they
// change, via this store or by another process touching the file. The
// channel closes when ctx is done.
func (s *Store) Watch(ctx context.Context) <-chan UserSettings {
	out := make(chan UserSettings, 1)
	changes, cancel := s.subscribe()

	// File watcher catches writes from outside this process. Watching the
	// directory instead of the file survives the atomic rename in Write.
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if addErr := watcher.Add(filepath.Dir(s.path)); addErr != nil {
			logging.Warn("cannot watch settings directory", "path", s.path, "error", addErr)
			watcher.Close()
			watcher = nil
		}
	} else {
		logging.Warn("cannot create settings watcher", "error", err)
		watcher = nil
	}

	go func() {
		defer close(out)
		defer cancel()
		if watcher != nil {
			defer watcher.Close()
		}

		fileEvents := make(<-chan fsnotify.Event)
		if watcher != nil {
			fileEvents = watcher.Events
		}

		for {
			userSettings, err := s.Read()
			if err == nil {
				select {
				case out <- userSettings:
				case <-ctx.Done():
					return
				default:
					// replace an unconsumed value with the newest one
					select {
					case <-out:
					default:
					}
					select {
					case out <- userSettings:
					default:
					}
				}
			}

			waiting := true
			for waiting {
				select {
				case <-ctx.Done():
					return
				case <-changes:
					waiting = false
				case event := <-fileEvents:
					if filepath.Clean(event.Name) == filepath.Clean(s.path) {
						waiting = false
					}
				}
			}
		}
	}()
	return out
}
