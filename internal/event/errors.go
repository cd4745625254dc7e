package event

import "errors"

// Errors returned by bus operations.
var (
	// ErrNilHandler indicates a nil handler was passed to Subscribe.
	ErrNilHandler = errors.New("handler is nil")

	// ErrEmptyTopic indicates an empty topic was passed to Subscribe or Publish.
	ErrEmptyTopic = errors.New("topic is empty")

	// ErrSubscriptionNotFound indicates the subscription is not registered.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
