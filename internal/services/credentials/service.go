// Package credentials keeps the signed-in Cursor user's credentials current
// by watching the editor's state database.
package credentials

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/cursor-usage/internal/db"
	"github.com/j-veylop/cursor-usage/internal/logger"
	"github.com/j-veylop/cursor-usage/internal/models"
)

// DefaultDebounce collapses the burst of writes SQLite makes per commit.
const DefaultDebounce = 250 * time.Millisecond

// Event represents a credentials service event.
type Event struct {
	Type        EventType
	Error       error
	Credentials models.Credentials
}

// EventType defines the type of credentials event.
type EventType int

const (
	EventCredentialsLoaded EventType = iota
	EventCredentialsChanged
	EventError
)

// Loader reads credentials from the state database at path.
type Loader func(ctx context.Context, path string) (*models.Credentials, error)

// Service holds the current credentials and reloads them when the state
// database changes on disk.
type Service struct {
	mu            sync.RWMutex
	creds         models.Credentials
	path          string
	load          Loader
	debounce      time.Duration
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	done          chan struct{}
	debounceTimer *time.Timer
	closed        bool
}

// New loads credentials from path and starts watching it. A failed initial
// load is returned as an error. A nil load uses db.LoadCredentials.
func New(ctx context.Context, path string, load Loader) (*Service, error) {
	if load == nil {
		load = db.LoadCredentials
	}

	s := &Service{
		path:      path,
		load:      load,
		debounce:  DefaultDebounce,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	creds, err := load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	s.creds = *creds

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventCredentialsLoaded, Credentials: *creds})
	return s, nil
}

// SetDebounce changes the delay between the last write and the reload.
func (s *Service) SetDebounce(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounce = d
}

// Events returns the event channel for subscribing to credential changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Credentials returns the current credentials.
func (s *Service) Credentials() models.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Path returns the watched state database path.
func (s *Service) Path() string {
	return s.path
}

// Reload reads credentials again. It reports whether they changed.
func (s *Service) Reload(ctx context.Context) (bool, error) {
	creds, err := s.load(ctx, s.path)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	changed := s.creds != *creds
	s.creds = *creds
	s.mu.Unlock()

	return changed, nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// SQLite replaces and journals the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	defer close(s.done)

	base := filepath.Base(s.path)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			// state.vscdb, state.vscdb-wal, state.vscdb-journal
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.scheduleReload()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) scheduleReload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, s.handleFileChange)
}

func (s *Service) handleFileChange() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed, err := s.Reload(ctx)
	if err != nil {
		logger.Warn("failed to reload credentials", "path", s.path, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	if changed {
		logger.Info("credentials changed", "path", s.path)
		s.sendEvent(Event{Type: EventCredentialsChanged, Credentials: s.Credentials()})
	}
}

// sendEvent sends an event without blocking, dropping the oldest when full.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and waits for it to exit.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	close(s.stopChan)
	err := s.watcher.Close()
	<-s.done
	return err
}
