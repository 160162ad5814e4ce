package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/heimer/internal/logging"
	"github.com/aretw0/heimer/pkg/domain"
)

// Machine holds the current workflow snapshot and applies transitions to it.
// It owns no document data.
type Machine struct {
	mu      sync.Mutex
	table   Table
	current domain.Snapshot
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithLifecycleHooks registers observers called after every transition.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithTable replaces the transition table. The table is validated by New.
func WithTable(t Table) Option {
	return func(m *Machine) {
		m.table = t
	}
}

// New creates a machine in the initial snapshot.
// It fails when the configured table is not exhaustive.
func New(opts ...Option) (*Machine, error) {
	m := &Machine{
		table:   defaultTable,
		current: domain.InitialSnapshot(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := Validate(m.table); err != nil {
		return nil, err
	}
	return m, nil
}

// Current returns the current snapshot.
func (m *Machine) Current() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Fire consumes one action and returns the new snapshot.
func (m *Machine) Fire(ctx context.Context, action domain.Action, guards domain.Guards) domain.Snapshot {
	m.mu.Lock()
	from := m.current
	next := transition(m.table, from, action, guards)
	m.current = next
	m.mu.Unlock()

	m.logger.Debug("workflow transition",
		"action", action,
		"from", from.State,
		"to", next.State,
		"pending", next.Pending,
	)

	if m.hooks.OnTransition != nil {
		m.hooks.OnTransition(ctx, domain.NewTransitionEvent(action, from, next, guards))
	}
	return next
}

// Reset puts the machine back into the initial snapshot.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.InitialSnapshot()
}
