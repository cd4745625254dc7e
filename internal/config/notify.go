package config

import "sync"

// Change represents a configuration change event.
type Change struct {
	// Path is the dot-separated path to the changed setting.
	Path string

	// OldValue is the previous value (nil on initial load).
	OldValue any

	// NewValue is the new value.
	NewValue any

	// Initial is true for notifications fired by the first load,
	// before any user-driven change.
	Initial bool
}

// Observer is called when a setting changes.
type Observer func(change Change)

// Subscription represents an active observer registration.
type Subscription struct {
	id       uint64
	notifier *notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// notifier fans a Change out to registered observers synchronously.
// Observer invocation order is unspecified.
type notifier struct {
	mu sync.RWMutex

	global map[uint64]Observer
	byPath map[string]map[uint64]Observer
	nextID uint64
}

func newNotifier() *notifier {
	return &notifier{
		global: make(map[uint64]Observer),
		byPath: make(map[string]map[uint64]Observer),
	}
}

func (n *notifier) subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.global[id] = observer

	return &Subscription{id: id, notifier: n}
}

func (n *notifier) subscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	observers, ok := n.byPath[path]
	if !ok {
		observers = make(map[uint64]Observer)
		n.byPath[path] = observers
	}
	observers[id] = observer

	return &Subscription{id: id, notifier: n}
}

func (n *notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.global, id)
	for path, observers := range n.byPath {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.byPath, path)
		}
	}
}

func (n *notifier) notify(change Change) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.global))
	for _, o := range n.global {
		observers = append(observers, o)
	}
	for _, o := range n.byPath[change.Path] {
		observers = append(observers, o)
	}
	n.mu.RUnlock()

	for _, o := range observers {
		o(change)
	}
}
