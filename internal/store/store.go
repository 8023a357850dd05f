// Package store persists runtime settings and the roster as JSON files.
// Writes are synchronous: a mutating command does not report success until
// its state is on disk.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"standupbot/internal/standup"
)

const (
	settingsFile = "config.json"
	rosterFile   = "users.json"
)

type Store struct {
	dir string
}

// New creates the data directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// LoadSettings reads persisted settings. On first run it materializes the
// defaults to disk. Keys missing from the file keep their default values,
// so settings added later do not break older data files.
func (s *Store) LoadSettings() (standup.Settings, error) {
	settings := standup.DefaultSettings()

	data, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if os.IsNotExist(err) {
		if err := s.SaveSettings(settings); err != nil {
			return standup.Settings{}, err
		}
		return settings, nil
	}
	if err != nil {
		return standup.Settings{}, fmt.Errorf("error reading %s: %w", settingsFile, err)
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return standup.Settings{}, fmt.Errorf("error parsing %s: %w", settingsFile, err)
	}
	return settings, nil
}

// SaveSettings writes settings to disk immediately.
func (s *Store) SaveSettings(settings standup.Settings) error {
	return s.write(settingsFile, settings)
}

// LoadRoster reads the persisted roster, materializing an empty one on
// first run.
func (s *Store) LoadRoster() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, rosterFile))
	if os.IsNotExist(err) {
		if err := s.SaveRoster([]string{}); err != nil {
			return nil, err
		}
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", rosterFile, err)
	}

	var roster []string
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", rosterFile, err)
	}
	return roster, nil
}

// SaveRoster writes the roster to disk immediately.
func (s *Store) SaveRoster(roster []string) error {
	if roster == nil {
		roster = []string{}
	}
	return s.write(rosterFile, roster)
}

func (s *Store) write(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	return nil
}
