package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

func (s *Store) startWatcher() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.WithError(err).Warn("failed to create file watcher, falling back to polling")
		s.startPollingWatcher()
		return
	}

	if err := watcher.Add(s.path); err != nil {
		log.WithError(err).WithField("path", s.path).Warn("failed to watch config file, falling back to polling")
		watcher.Close()
		s.startPollingWatcher()
		return
	}

	// Also watch the directory to catch atomic writes (rename operations)
	configDir := filepath.Dir(s.path)
	if err := watcher.Add(configDir); err != nil {
		log.WithError(err).WithField("dir", configDir).Warn("failed to watch config directory")
	}

	log.WithField("path", s.path).Info("file watcher started using fsnotify")

	go func() {
		defer watcher.Close()

		// Debounce to avoid multiple reloads on rapid changes
		var debounceTimer *time.Timer
		debounceDuration := 100 * time.Millisecond

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name == s.path && (event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create) {
					if debounceTimer != nil {
						debounceTimer.Stop()
					}
					debounceTimer = time.AfterFunc(debounceDuration, func() {
						s.checkAndReload()
					})
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("file watcher error")

			case <-s.stopCh:
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				return
			}
		}
	}()
}

// startPollingWatcher is a fallback when fsnotify is not available
func (s *Store) startPollingWatcher() {
	ticker := time.NewTicker(5 * time.Second)
	log.WithField("interval", "5s").Info("file watcher started using polling")

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.checkAndReload()
			case <-s.stopCh:
				return
			}
		}
	}()
}

func (s *Store) checkAndReload() {
	if s.path == "" {
		return
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return
	}

	s.mu.Lock()
	stale := info.ModTime().After(s.lastMod)
	if !stale {
		s.mu.Unlock()
		return
	}
	old := s.config
	if err := s.load(); err != nil {
		s.mu.Unlock()
		log.WithError(err).WithField("path", s.path).Warn("failed to reload config")
		return
	}
	if s.config.InstallID == "" && old != nil {
		s.config.InstallID = old.InstallID
	}
	snapshot := *s.config
	s.mu.Unlock()

	s.logChanges(old, &snapshot)
	s.emitChange(&snapshot)
}

func (s *Store) logChanges(old, updated *FileConfig) {
	if old == nil {
		return
	}
	if old.Debug != updated.Debug {
		log.WithFields(log.Fields{"field": "debug", "old": old.Debug, "new": updated.Debug}).Info("config changed")
	}
	if old.Port != updated.Port {
		log.WithFields(log.Fields{"field": "port", "old": old.Port, "new": updated.Port}).Info("config changed")
	}
	if (old.APIToken != "") != (updated.APIToken != "") {
		log.WithField("field", "api_token").Info("config changed")
	}
	if old.SelectedPageID != updated.SelectedPageID {
		log.WithFields(log.Fields{"field": "selected_page_id", "old": old.SelectedPageID, "new": updated.SelectedPageID}).Info("config changed")
	}
}
