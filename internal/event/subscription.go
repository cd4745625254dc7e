package event

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handler is the interface implemented by event consumers.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, event any) error

// Handle calls f(ctx, event).
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// FilterFunc is a predicate applied to events before delivery.
// Events are only delivered if the filter returns true.
type FilterFunc func(event any) bool

// Priority determines handler execution order within a topic.
// Lower values execute first.
type Priority int

// Standard priorities.
const (
	PriorityHigh   Priority = -100
	PriorityNormal Priority = 0
	PriorityLow    Priority = 100
)

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is receiving events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStatePaused means the subscription is temporarily not receiving events.
	SubscriptionStatePaused

	// SubscriptionStateCancelled means the subscription has been permanently cancelled.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePaused:
		return "paused"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order (lower values execute first).
	Priority Priority

	// Filter is an optional predicate to filter events.
	Filter FilterFunc

	// Once indicates the subscription should auto-cancel after the first event.
	Once bool
}

// SubscriptionOption is a function that configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithFilter sets a filter predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

// WithOnce sets the subscription to auto-cancel after the first event.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

// Subscription represents an active event subscription.
type Subscription struct {
	id      string
	pattern Topic
	handler Handler
	config  SubscriptionConfig
	state   atomic.Int32
}

func newSubscription(pattern Topic, h Handler, opts ...SubscriptionOption) *Subscription {
	config := SubscriptionConfig{Priority: PriorityNormal}
	for _, opt := range opts {
		opt(&config)
	}

	s := &Subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		handler: h,
		config:  config,
	}
	s.state.Store(int32(SubscriptionStateActive))
	return s
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed topic pattern.
func (s *Subscription) Topic() Topic {
	return s.pattern
}

// State returns the current subscription state.
func (s *Subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

// IsActive returns true if the subscription can receive events.
func (s *Subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

// Pause temporarily stops event delivery to this subscription.
// Pausing a cancelled subscription has no effect.
func (s *Subscription) Pause() {
	s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStatePaused))
}

// Resume restarts event delivery after a pause.
func (s *Subscription) Resume() {
	s.state.CompareAndSwap(int32(SubscriptionStatePaused), int32(SubscriptionStateActive))
}

// Cancel permanently cancels the subscription.
// A cancelled subscription cannot be resumed, but it remains registered
// until removed with Bus.Unsubscribe.
func (s *Subscription) Cancel() {
	s.state.Store(int32(SubscriptionStateCancelled))
}
