package editor

import "context"

// Document schemes.
const (
	// SchemeFile identifies a document backed by a local file.
	SchemeFile = "file"

	// SchemeRevision identifies a read-only document showing a committed
	// revision of a file rather than its working-tree content.
	SchemeRevision = "git"
)

// Document is an open text buffer in the host editor.
//
// Implementations must be comparable (pointer types are fine): the tracker
// keys its cache by Document identity while the buffer stays open.
type Document interface {
	// Path returns the absolute filesystem path of the backing file.
	Path() string

	// URI returns the document's identity as a URI string.
	URI() string

	// Scheme returns the document scheme (SchemeFile for local files).
	Scheme() string

	// IsDirty reports whether the buffer has unsaved changes.
	IsDirty() bool

	// IsClosed reports whether the buffer has been closed.
	IsClosed() bool
}

// Editor is a view onto a document.
//
// A host may surface editors that hold no text document (output panes,
// terminals); those return a nil Document and are ignored by the tracker.
type Editor interface {
	// Document returns the text document shown in this editor, or nil.
	Document() Document
}

// ContextKey names a boolean command-context flag the host exposes to its
// UI layer for conditional command and menu visibility.
type ContextKey string

// Context flags maintained for the active document.
const (
	// ContextActiveIsRevision is set when the active document shows a
	// committed revision rather than working-tree content.
	ContextActiveIsRevision ContextKey = "activefile.revision"

	// ContextActiveFileTracked is set when the active document's file is
	// tracked by source control.
	ContextActiveFileTracked ContextKey = "activefile.tracked"

	// ContextActiveIsBlameable is set when blame annotations can be
	// computed for the active document.
	ContextActiveIsBlameable ContextKey = "activefile.blameable"

	// ContextActiveHasRemote is set when the active document's repository
	// has at least one remote configured.
	ContextActiveHasRemote ContextKey = "activefile.remote"
)

// Host is the host-editor surface the tracker initiates calls against.
type Host interface {
	// ActiveEditor returns the currently focused editor, or nil when no
	// editor has focus.
	ActiveEditor() Editor

	// OpenDocument resolves a filesystem path or file URI to an open
	// document, opening it if necessary.
	OpenDocument(ctx context.Context, identity string) (Document, error)

	// SetContext sets a boolean command-context flag.
	SetContext(key ContextKey, on bool)
}
