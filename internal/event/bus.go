package event

import (
	"context"
	"errors"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
)

// PanicHandler is called when a handler panics during delivery.
// It receives the event being processed, the panic value, and the stack
// trace captured at the point of panic.
type PanicHandler func(event any, panicValue any, stack []byte)

// Stats contains bus delivery counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerErrors uint64
	HandlerPanics uint64
}

// Bus is a synchronous publish/subscribe bus keyed by hierarchical topics.
//
// Delivery happens in the publisher's goroutine: Publish blocks until every
// matching handler has run. Handlers therefore see events in the order they
// were published by a single publisher, which is what the tracker's
// cooperative-scheduling model relies on.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic][]*Subscription
	byID map[string]*Subscription

	panicHandler PanicHandler

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets the handler invoked when a subscriber panics.
// By default panics are recovered silently.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *Bus) {
		b.panicHandler = h
	}
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subs: make(map[Topic][]*Subscription),
		byID: make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for a topic pattern.
func (b *Bus) Subscribe(pattern Topic, h Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if pattern == "" {
		return nil, ErrEmptyTopic
	}
	if h == nil {
		return nil, ErrNilHandler
	}

	sub := newSubscription(pattern, h, opts...)

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := append(b.subs[pattern], sub)
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].config.Priority < subs[j].config.Priority
	})
	b.subs[pattern] = subs
	b.byID[sub.id] = sub

	return sub, nil
}

// SubscribeFunc registers a plain function for a topic pattern.
func (b *Bus) SubscribeFunc(pattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe removes a subscription from the bus.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.byID[sub.id]; !exists {
		return ErrSubscriptionNotFound
	}

	sub.Cancel()
	delete(b.byID, sub.id)

	subs := b.subs[sub.pattern]
	for i, s := range subs {
		if s.id == sub.id {
			b.subs[sub.pattern] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.pattern]) == 0 {
		delete(b.subs, sub.pattern)
	}

	return nil
}

// Publish delivers an event to every active subscription whose pattern
// matches the topic. Handler errors are collected and returned joined;
// a failing handler does not prevent delivery to the rest.
func (b *Bus) Publish(ctx context.Context, topic Topic, event any) error {
	if topic == "" {
		return ErrEmptyTopic
	}

	b.published.Add(1)

	matching := b.matching(topic)

	var errs []error
	for _, sub := range matching {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !sub.IsActive() {
			continue
		}
		if sub.config.Filter != nil && !sub.config.Filter(event) {
			continue
		}
		if sub.config.Once {
			sub.Cancel()
		}

		if err := b.deliver(ctx, sub, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// matching returns the subscriptions for a concrete topic in priority order.
func (b *Bus) matching(topic Topic) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []*Subscription
	for pattern, subs := range b.subs {
		if topic.Matches(pattern) {
			result = append(result, subs...)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].config.Priority < result[j].config.Priority
	})
	return result
}

// deliver runs a single handler with panic recovery.
func (b *Bus) deliver(ctx context.Context, sub *Subscription, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			stack := debug.Stack()
			if b.panicHandler != nil {
				// The panic handler must not take the bus down with it.
				func() {
					defer func() { _ = recover() }()
					b.panicHandler(event, r, stack)
				}()
			}
		}
	}()

	b.delivered.Add(1)
	if err = sub.handler.Handle(ctx, event); err != nil {
		b.handlerErrors.Add(1)
	}
	return err
}

// Stats returns a snapshot of delivery counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerErrors: b.handlerErrors.Load(),
		HandlerPanics: b.handlerPanics.Load(),
	}
}

// SubscriptionCount returns the number of registered subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}
