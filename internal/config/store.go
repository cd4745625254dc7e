package config

import (
	"reflect"
	"sync"
	"time"
)

// Store holds current setting values over built-in defaults and notifies
// observers on change.
type Store struct {
	mu       sync.RWMutex
	values   map[string]any
	notifier *notifier
}

// NewStore creates a store populated with built-in defaults.
// No notifications fire for the defaults themselves; the initial Load does.
func NewStore() *Store {
	return &Store{
		values:   defaults(),
		notifier: newNotifier(),
	}
}

// Subscribe registers an observer for all setting changes.
func (s *Store) Subscribe(observer Observer) *Subscription {
	return s.notifier.subscribe(observer)
}

// SubscribePath registers an observer for changes to a single setting.
func (s *Store) SubscribePath(path string, observer Observer) *Subscription {
	return s.notifier.subscribePath(path, observer)
}

// Get returns the current value for a setting path, or nil if unknown.
func (s *Store) Get(path string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[path]
}

// Bool returns a boolean setting. Unknown or mistyped values return false.
func (s *Store) Bool(path string) bool {
	v, _ := s.Get(path).(bool)
	return v
}

// Int returns an integer setting. Unknown or mistyped values return 0.
// TOML integers decode as int64, so both widths are accepted.
func (s *Store) Int(path string) int {
	switch v := s.Get(path).(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

// Duration interprets an integer setting as milliseconds.
func (s *Store) Duration(path string) time.Duration {
	return time.Duration(s.Int(path)) * time.Millisecond
}

// Set updates a single setting and notifies observers if the value changed.
func (s *Store) Set(path string, value any) {
	s.mu.Lock()
	old, had := s.values[path]
	if had && reflect.DeepEqual(old, value) {
		s.mu.Unlock()
		return
	}
	s.values[path] = value
	s.mu.Unlock()

	s.notifier.notify(Change{Path: path, OldValue: old, NewValue: value})
}

// Load replaces settings from a flattened path->value map, firing one
// notification per path whose value differs from the current one. The
// initial flag marks the notifications as coming from the first load.
//
// On an initial load every known setting notifies, changed or not, so that
// consumers can pick up their starting values.
func (s *Store) Load(values map[string]any, initial bool) {
	s.mu.Lock()
	var changes []Change
	for path, value := range values {
		old, had := s.values[path]
		changed := !had || !reflect.DeepEqual(old, value)
		if changed {
			s.values[path] = value
		}
		if changed || initial {
			var oldValue any
			if !initial {
				oldValue = old
			}
			changes = append(changes, Change{
				Path:     path,
				OldValue: oldValue,
				NewValue: value,
				Initial:  initial,
			})
		}
	}
	if initial {
		// Settings absent from the file still announce their defaults.
		for path, value := range s.values {
			if _, ok := values[path]; ok {
				continue
			}
			changes = append(changes, Change{
				Path:     path,
				NewValue: value,
				Initial:  true,
			})
		}
	}
	s.mu.Unlock()

	for _, change := range changes {
		s.notifier.notify(change)
	}
}
