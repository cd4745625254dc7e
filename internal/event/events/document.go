package events

import (
	"github.com/korigod/gitlens/internal/editor"
	"github.com/korigod/gitlens/internal/event"
)

// Document-tracking topics, published by the tracker and consumed by
// annotation renderers and command handlers.
const (
	// TopicDocumentBlameStateChanged is published when a tracked document
	// becomes blameable or stops being blameable.
	TopicDocumentBlameStateChanged event.Topic = "document.blame.changed"

	// TopicDocumentDirtyStateChanged is published when a tracked document's
	// dirty state changes in the active editor.
	TopicDocumentDirtyStateChanged event.Topic = "document.dirty.changed"

	// TopicDocumentDirtyIdleTriggered is published when a dirty document has
	// seen no edit for the configured idle delay.
	TopicDocumentDirtyIdleTriggered event.Topic = "document.dirty.idle"
)

// DocumentBlameStateChanged is published when a tracked document becomes
// blameable or stops being blameable.
type DocumentBlameStateChanged struct {
	// Document is the underlying buffer.
	Document editor.Document

	// Key is the document's canonical state key.
	Key string

	// Blameable reports whether blame annotations can now be computed.
	Blameable bool
}

// DocumentDirtyStateChanged is published when the dirty state of the active
// editor's document changes.
type DocumentDirtyStateChanged struct {
	// Editor is the editor the change was observed in.
	Editor editor.Editor

	// Document is the underlying buffer.
	Document editor.Document

	// Key is the document's canonical state key.
	Key string

	// Dirty is the new dirty state.
	Dirty bool
}

// DocumentDirtyIdleTriggered is published when a dirty document has seen no
// edit for the configured idle delay.
type DocumentDirtyIdleTriggered struct {
	// Editor is the editor the document is shown in.
	Editor editor.Editor

	// Document is the underlying buffer.
	Document editor.Document

	// Key is the document's canonical state key.
	Key string
}
