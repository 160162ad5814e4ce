package memory

import (
	"context"
	"sync"

	"github.com/aretw0/heimer/pkg/domain"
)

// Settings implements ports.SettingsStore in memory.
// Safe for concurrent use.
type Settings struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewSettings creates an empty store.
func NewSettings() *Settings {
	return &Settings{
		data: make(map[string]string),
	}
}

// Get returns the value of key.
func (s *Settings) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", domain.ErrSettingNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete removes key.
func (s *Settings) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys lists the stored keys.
func (s *Settings) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
