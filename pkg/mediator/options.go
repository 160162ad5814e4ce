package mediator

import (
	"log/slog"

	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/ports"
)

// Option configures a Mediator.
type Option func(*Mediator)

// WithCodec sets the file format used by open and save.
func WithCodec(c ports.Codec) Option {
	return func(m *Mediator) {
		m.codec = c
	}
}

// WithExporter sets the image exporter.
func WithExporter(e ports.Exporter) Option {
	return func(m *Mediator) {
		m.exporter = e
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mediator) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observers of every operation.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Mediator) {
		m.hooks = hooks
	}
}

// WithUndoLimit bounds the undo history.
func WithUndoLimit(limit int) Option {
	return func(m *Mediator) {
		m.undoLimit = limit
	}
}
