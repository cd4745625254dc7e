package events

import "github.com/korigod/gitlens/internal/event"

// Configuration topics.
const (
	// TopicConfigChanged is published when a setting value changes,
	// including the initial load.
	TopicConfigChanged event.Topic = "config.changed"
)

// ConfigChanged is published when a setting value changes.
type ConfigChanged struct {
	// Path is the dot-separated setting path.
	Path string

	// OldValue is the previous value (nil on initial load).
	OldValue any

	// NewValue is the new value.
	NewValue any

	// Initial is true for the notification fired when configuration is
	// first loaded, before any user-driven change.
	Initial bool
}
