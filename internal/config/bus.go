package config

import (
	"context"

	"github.com/korigod/gitlens/internal/event"
	"github.com/korigod/gitlens/internal/event/events"
)

// Bind republishes every setting change on the bus so that consumers
// outside this package can watch configuration the same way they watch
// editor lifecycle events. Unsubscribe stops the republishing.
func (s *Store) Bind(bus *event.Bus) *Subscription {
	return s.Subscribe(func(c Change) {
		_ = bus.Publish(context.Background(), events.TopicConfigChanged, events.ConfigChanged{
			Path:     c.Path,
			OldValue: c.OldValue,
			NewValue: c.NewValue,
			Initial:  c.Initial,
		})
	})
}
