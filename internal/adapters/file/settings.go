package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/heimer/internal/fsutil"
	"github.com/aretw0/heimer/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Settings implements ports.SettingsStore on a single YAML file.
// Every call re-reads the file so several editor processes see each other's writes.
type Settings struct {
	Path string
	mu   sync.Mutex
}

// DefaultPath is settings.yaml inside the user configuration directory,
// falling back to ".heimer" in the working directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = ".heimer"
	} else {
		dir = filepath.Join(dir, "heimer")
	}
	return filepath.Join(dir, "settings.yaml")
}

// NewSettings creates a store backed by path. An empty path means DefaultPath.
func NewSettings(path string) *Settings {
	if path == "" {
		path = DefaultPath()
	}
	return &Settings{Path: path}
}

func (s *Settings) read() (map[string]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (s *Settings) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return fsutil.WriteFileAtomic(s.Path, data, 0644)
}

// Get returns the value of key.
func (s *Settings) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", domain.ErrSettingNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

// Delete removes key. Missing keys are ignored.
func (s *Settings) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

// Keys lists the stored keys.
func (s *Settings) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	return keys, nil
}
