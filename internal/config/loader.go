package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

func (s *Store) load() error {
	if s.path == "" {
		return os.ErrNotExist
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var cfg FileConfig
	ext := strings.ToLower(filepath.Ext(s.path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			if err := json.Unmarshal(data, &cfg); err != nil {
				return fmt.Errorf("failed to parse config file (tried YAML and JSON)")
			}
		}
	}

	if info, err := os.Stat(s.path); err == nil {
		s.lastMod = info.ModTime()
	}

	s.config = &cfg
	log.WithField("path", s.path).Info("configuration loaded")
	return nil
}

// save writes the current config through a temp file and a rename so a
// crash mid-write never leaves a truncated file behind.
func (s *Store) save() error {
	if s.path == "" {
		return fmt.Errorf("no config file path set")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".json":
		data, err = json.MarshalIndent(s.config, "", "  ")
	default:
		data, err = yaml.Marshal(s.config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		s.lastMod = info.ModTime()
	}
	return nil
}
