// Package event provides the publish/subscribe channels that connect the
// document tracker to annotation renderers and command handlers.
//
// Events are identified by hierarchical dot-notation topics (for example
// "document.dirty.changed"). Subscribers register against an exact topic or
// a pattern containing wildcards, and delivery is synchronous in the
// publisher's goroutine with per-handler panic recovery. The bus makes no
// ordering guarantee across topics; within a topic, handlers run in
// priority order.
package event
