package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventOperation  EventType = "operation"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// TransitionEvent is emitted for every action consumed by the workflow state machine.
type TransitionEvent struct {
	EventBase
	Action  Action    `json:"action"`
	From    State     `json:"from"`
	To      State     `json:"to"`
	Pending Operation `json:"pending"`
	Guards  Guards    `json:"guards"`
}

// OperationEvent is emitted for every mediator operation.
type OperationEvent struct {
	EventBase
	Name    string `json:"name"`
	IsError bool   `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnOperation  func(context.Context, *OperationEvent)
}

// NewTransitionEvent stamps a transition event.
func NewTransitionEvent(action Action, from, to Snapshot, guards Guards) *TransitionEvent {
	return &TransitionEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: EventTransition},
		Action:    action,
		From:      from.State,
		To:        to.State,
		Pending:   to.Pending,
		Guards:    guards,
	}
}

// NewOperationEvent stamps an operation event.
func NewOperationEvent(name string, err error) *OperationEvent {
	return &OperationEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: EventOperation},
		Name:      name,
		IsError:   err != nil,
	}
}

// ComposeHooks returns hooks calling each of the given hooks in order.
// Nil callbacks are skipped.
func ComposeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var transitions []func(context.Context, *TransitionEvent)
	var operations []func(context.Context, *OperationEvent)
	for _, h := range hooks {
		if h.OnTransition != nil {
			transitions = append(transitions, h.OnTransition)
		}
		if h.OnOperation != nil {
			operations = append(operations, h.OnOperation)
		}
	}

	var out LifecycleHooks
	if len(transitions) > 0 {
		out.OnTransition = func(ctx context.Context, e *TransitionEvent) {
			for _, fn := range transitions {
				fn(ctx, e)
			}
		}
	}
	if len(operations) > 0 {
		out.OnOperation = func(ctx context.Context, e *OperationEvent) {
			for _, fn := range operations {
				fn(ctx, e)
			}
		}
	}
	return out
}
