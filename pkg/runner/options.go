package runner

import (
	"log/slog"

	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithDialogs sets the prompts shown in dialog states.
// Without dialogs every prompt is canceled.
func WithDialogs(d ports.Dialogs) Option {
	return func(r *Runner) {
		r.Dialogs = d
	}
}

// WithWindow sets the window receiving titles and messages.
func WithWindow(w ports.Window) Option {
	return func(r *Runner) {
		r.Window = w
	}
}

// WithSettings sets the store holding the recent path.
func WithSettings(s ports.SettingsStore) Option {
	return func(r *Runner) {
		r.Settings = s
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithLifecycleHooks registers observers of every workflow transition.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithFileExtension sets the extension appended by save-as.
// Defaults to the extension of the mediator's codec.
func WithFileExtension(ext string) Option {
	return func(r *Runner) {
		r.extension = ext
	}
}

// WithAppName sets the name used in titles and message boxes.
func WithAppName(name string) Option {
	return func(r *Runner) {
		r.AppName = name
	}
}

// WithExportSize prefills the export dialog with size instead of the scene size.
// An empty size keeps the scene size.
func WithExportSize(size domain.Size) Option {
	return func(r *Runner) {
		r.exportSize = size
	}
}
