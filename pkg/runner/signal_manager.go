package runner

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultRaceWindow is how long CheckRace waits for a signal to follow a read error.
const DefaultRaceWindow = 100 * time.Millisecond

// SignalManager turns SIGINT and SIGTERM into context cancellation for the editor loop.
// It can be re-armed after a handled interrupt so the next one is caught too.
type SignalManager struct {
	mu     sync.Mutex
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
	window time.Duration
}

// NewSignalManager starts listening for signals on top of parent.
func NewSignalManager(parent context.Context) *SignalManager {
	if parent == nil {
		parent = context.Background()
	}
	sm := &SignalManager{parent: parent, window: DefaultRaceWindow}
	sm.Reset()
	return sm
}

// Context returns the context canceled by the next signal.
func (sm *SignalManager) Context() context.Context {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.ctx
}

// Interrupted reports whether a signal arrived since the last Reset.
func (sm *SignalManager) Interrupted() bool {
	return sm.Context().Err() != nil && sm.parent.Err() == nil
}

// Reset re-arms the listener after a signal was handled.
func (sm *SignalManager) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.cancel != nil {
		sm.cancel()
	}
	sm.ctx, sm.cancel = signal.NotifyContext(sm.parent, os.Interrupt, syscall.SIGTERM)
}

// Stop releases the listener for good.
func (sm *SignalManager) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.cancel != nil {
		sm.cancel()
	}
}

// CheckRace waits briefly for a signal after a terminal read error.
// On some consoles Ctrl+C surfaces as EOF slightly before the signal is delivered.
func (sm *SignalManager) CheckRace() {
	ctx := sm.Context()
	if ctx.Err() != nil {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(sm.window):
	}
}
