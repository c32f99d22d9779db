package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventValidate EventType = "validate"
	EventRegister EventType = "register"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Schema    string    `json:"schema"`
}

// ValidationEvent describes one finished validation.
type ValidationEvent struct {
	EventBase
	Success    bool          `json:"success"`
	IssueCodes []string      `json:"issue_codes,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Outcome returns "success" or "failure".
func (e *ValidationEvent) Outcome() string {
	if e.Success {
		return "success"
	}
	return "failure"
}

// RegisterEvent describes a schema added to (or replaced in) a catalog.
type RegisterEvent struct {
	EventBase
	// Fingerprint identifies the registered version. Schemas built in code
	// are fingerprinted through their descriptor.
	Fingerprint string `json:"fingerprint,omitempty"`
	Replaced    bool   `json:"replaced,omitempty"`
}

// LifecycleHooks defines callbacks for catalog observability.
type LifecycleHooks struct {
	OnValidate func(context.Context, *ValidationEvent)
	OnRegister func(context.Context, *RegisterEvent)
}

// ComposeHooks returns hooks calling each of the given hooks in order.
func ComposeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnValidate: func(ctx context.Context, e *ValidationEvent) {
			for _, h := range hooks {
				if h.OnValidate != nil {
					h.OnValidate(ctx, e)
				}
			}
		},
		OnRegister: func(ctx context.Context, e *RegisterEvent) {
			for _, h := range hooks {
				if h.OnRegister != nil {
					h.OnRegister(ctx, e)
				}
			}
		},
	}
}
