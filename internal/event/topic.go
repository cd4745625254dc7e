package event

import "strings"

// Topic represents a hierarchical event type using dot notation.
// Examples: "document.dirty.changed", "editor.active.changed".
type Topic string

// Wildcard constants for pattern matching.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more trailing segments.
	WildcardMulti = "**"

	// Separator is the character used to separate topic segments.
	Separator = "."
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Parent returns the parent topic by removing the last segment.
// Returns an empty topic if there is no parent.
//
// Example: "document.dirty.changed" -> "document.dirty"
func (t Topic) Parent() Topic {
	s := string(t)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return ""
	}
	return Topic(s[:idx])
}

// Base returns the last segment of the topic.
//
// Example: "document.dirty.changed" -> "changed"
func (t Topic) Base() string {
	s := string(t)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

// IsPattern returns true if the topic contains wildcards.
func (t Topic) IsPattern() bool {
	return strings.Contains(string(t), WildcardSingle)
}

// Matches reports whether the concrete topic t matches the given pattern.
// The pattern may use "*" to match a single segment and a trailing "**"
// to match any remaining segments.
func (t Topic) Matches(pattern Topic) bool {
	if pattern == t {
		return true
	}
	if !pattern.IsPattern() {
		return false
	}

	want := pattern.Segments()
	have := t.Segments()

	for i, seg := range want {
		if seg == WildcardMulti {
			// Trailing multi-wildcard matches the rest, including nothing.
			return i == len(want)-1
		}
		if i >= len(have) {
			return false
		}
		if seg != WildcardSingle && seg != have[i] {
			return false
		}
	}

	return len(have) == len(want)
}
