package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"quicknotes/internal/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Store owns the configuration file and the shared application state it
// carries. All access goes through the mutex; callers get copies, never
// pointers into the guarded struct, so no caller can hold store state
// across a network call.
type Store struct {
	mu        sync.RWMutex
	config    *FileConfig
	path      string
	stopCh    chan struct{}
	onChange  []func(*FileConfig)
	lastMod   time.Time
	publisher events.Publisher
}

// NewStore loads (or defaults) the configuration at path and starts the
// file watcher when the file exists. A missing install id is minted and
// persisted immediately.
func NewStore(path string) (*Store, error) {
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			"config.json",
			filepath.Join(os.Getenv("HOME"), ".quicknotes", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".quicknotes", "config.yml"),
			"/etc/quicknotes/config.yaml",
		}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[1:])
	}

	s := &Store{
		path:   path,
		stopCh: make(chan struct{}),
	}

	if err := s.load(); err != nil {
		if os.IsNotExist(err) || path == "" {
			s.config = defaultConfig()
			log.WithField("path", path).Warn("using default configuration (no config file found)")
		} else {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if s.config.InstallID == "" {
		s.config.InstallID = uuid.NewString()
		if s.path != "" {
			if err := s.save(); err != nil {
				log.WithError(err).Warn("failed to persist install id")
			}
		}
	}

	if s.path != "" {
		if _, err := os.Stat(s.path); err == nil {
			s.startWatcher()
		}
	}

	return s, nil
}

// OnChange registers a callback invoked after any configuration change,
// whether through the API or by an external edit to the file.
func (s *Store) OnChange(fn func(*FileConfig)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// SetEventPublisher wires the event hub used to broadcast config updates.
func (s *Store) SetEventPublisher(p events.Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() FileConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return *defaultConfig()
	}
	return *s.config
}

// APIToken returns the stored credential, or "" when none is set.
func (s *Store) APIToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return ""
	}
	return s.config.APIToken
}

// SelectedPage returns the selected page id and title.
func (s *Store) SelectedPage() (id, title string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return "", ""
	}
	return s.config.SelectedPageID, s.config.SelectedPageTitle
}

// InstallID returns the per-installation identifier.
func (s *Store) InstallID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return ""
	}
	return s.config.InstallID
}

// SetAPIToken persists a new credential.
func (s *Store) SetAPIToken(token string) error {
	return s.update(func(cfg *FileConfig) {
		cfg.APIToken = token
	})
}

// SetSelectedPage persists the selected destination page.
func (s *Store) SetSelectedPage(id, title string) error {
	return s.update(func(cfg *FileConfig) {
		cfg.SelectedPageID = id
		cfg.SelectedPageTitle = title
	})
}

func (s *Store) update(apply func(*FileConfig)) error {
	s.mu.Lock()
	if s.config == nil {
		s.config = defaultConfig()
	}
	apply(s.config)
	snapshot := *s.config
	var err error
	if s.path != "" {
		err = s.save()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.emitChange(&snapshot)
	return nil
}

// Close stops the file watcher.
func (s *Store) Close() {
	close(s.stopCh)
}

func (s *Store) listenersSnapshot() ([]func(*FileConfig), events.Publisher, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	callbacks := make([]func(*FileConfig), len(s.onChange))
	copy(callbacks, s.onChange)
	return callbacks, s.publisher, s.path
}

// emitChange notifies listeners and the hub. The broadcast payload never
// contains the credential itself, only whether one is set.
func (s *Store) emitChange(cfg *FileConfig) {
	callbacks, publisher, path := s.listenersSnapshot()

	for _, fn := range callbacks {
		copied := *cfg
		fn(&copied)
	}

	if publisher != nil {
		publisher.Publish(context.Background(), events.TopicConfigUpdated, ChangeEvent{
			Path:              path,
			UpdatedAt:         time.Now().UTC(),
			TokenSet:          cfg.APIToken != "",
			SelectedPageID:    cfg.SelectedPageID,
			SelectedPageTitle: cfg.SelectedPageTitle,
		})
	}
}

// ChangeEvent is the payload broadcast when configuration changes.
type ChangeEvent struct {
	Path              string    `json:"path"`
	UpdatedAt         time.Time `json:"updated_at"`
	TokenSet          bool      `json:"token_set"`
	SelectedPageID    string    `json:"selected_page_id"`
	SelectedPageTitle string    `json:"selected_page_title"`
}
