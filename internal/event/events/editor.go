package events

import (
	"github.com/korigod/gitlens/internal/editor"
	"github.com/korigod/gitlens/internal/event"
)

// Editor lifecycle topics, published by the host.
const (
	// TopicEditorActiveChanged is published when editor focus moves.
	TopicEditorActiveChanged event.Topic = "editor.active.changed"

	// TopicDocumentContentChanged is published when a document's content
	// changes. Hosts coalesce bursts of keystrokes before publishing.
	TopicDocumentContentChanged event.Topic = "document.content.changed"

	// TopicDocumentClosed is published when a document is closed.
	TopicDocumentClosed event.Topic = "document.closed"

	// TopicDocumentSaved is published when a document is saved to disk.
	TopicDocumentSaved event.Topic = "document.saved"
)

// EditorActiveChanged is published when editor focus moves.
type EditorActiveChanged struct {
	// Editor is the newly focused editor, or nil when no editor has focus.
	Editor editor.Editor
}

// DocumentContentChanged is published when a document's content changes.
type DocumentContentChanged struct {
	// Document is the changed document.
	Document editor.Document
}

// DocumentClosed is published when a document is closed.
type DocumentClosed struct {
	// Document is the closed document.
	Document editor.Document
}

// DocumentSaved is published when a document is saved to disk.
type DocumentSaved struct {
	// Document is the saved document.
	Document editor.Document
}
