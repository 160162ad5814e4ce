package ports

import "context"

// SettingsStore persists keyed values across runs.
type SettingsStore interface {
	// Get returns domain.ErrSettingNotFound for unknown keys.
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string) error

	Delete(ctx context.Context, key string) error

	// Keys lists the stored keys in no particular order.
	Keys(ctx context.Context) ([]string, error)
}
