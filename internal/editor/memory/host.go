// Package memory provides an in-process implementation of the editor.Host
// contract. Tests and headless tooling drive it directly; it publishes the
// same lifecycle events a real host adapter would.
package memory

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/korigod/gitlens/internal/editor"
	"github.com/korigod/gitlens/internal/event"
	"github.com/korigod/gitlens/internal/event/events"
)

// Document is an in-process editor.Document implementation.
type Document struct {
	path   string
	scheme string
	dirty  atomic.Bool
	closed atomic.Bool
}

// Path returns the absolute filesystem path of the backing file.
func (d *Document) Path() string {
	return d.path
}

// URI returns the document's identity as a file URI.
func (d *Document) URI() string {
	u := &url.URL{Scheme: d.scheme, Path: filepath.ToSlash(d.path)}
	return u.String()
}

// Scheme returns the document scheme.
func (d *Document) Scheme() string {
	return d.scheme
}

// IsDirty reports whether the buffer has unsaved changes.
func (d *Document) IsDirty() bool {
	return d.dirty.Load()
}

// IsClosed reports whether the buffer has been closed.
func (d *Document) IsClosed() bool {
	return d.closed.Load()
}

// Editor is an in-process editor.Editor implementation.
type Editor struct {
	doc *Document
}

// Document returns the text document shown in this editor, or nil for a
// pane without one.
func (e *Editor) Document() editor.Document {
	if e.doc == nil {
		return nil
	}
	return e.doc
}

// Host keeps documents in a map keyed by cleaned path and publishes
// lifecycle events on the bus it was constructed with.
type Host struct {
	mu       sync.Mutex
	bus      *event.Bus
	docs     map[string]*Document
	active   *Editor
	contexts map[editor.ContextKey]bool
}

// NewHost creates a host that publishes lifecycle events on bus.
func NewHost(bus *event.Bus) *Host {
	return &Host{
		bus:      bus,
		docs:     make(map[string]*Document),
		contexts: make(map[editor.ContextKey]bool),
	}
}

// ActiveEditor returns the currently focused editor, or nil.
func (h *Host) ActiveEditor() editor.Editor {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		return nil
	}
	return h.active
}

// OpenDocument resolves a path or file URI to a document, opening it if
// necessary.
func (h *Host) OpenDocument(_ context.Context, identity string) (editor.Document, error) {
	path := identity
	if strings.Contains(identity, "://") {
		u, err := url.Parse(identity)
		if err != nil {
			return nil, err
		}
		path = filepath.FromSlash(u.Path)
	}
	path = filepath.Clean(path)

	h.mu.Lock()
	defer h.mu.Unlock()

	if doc, ok := h.docs[path]; ok {
		return doc, nil
	}
	doc := &Document{path: path, scheme: editor.SchemeFile}
	h.docs[path] = doc
	return doc, nil
}

// OpenRevision opens a read-only revision document for a path.
func (h *Host) OpenRevision(path string) *Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &Document{path: filepath.Clean(path), scheme: editor.SchemeRevision}
}

// SetContext sets a boolean command-context flag.
func (h *Host) SetContext(key editor.ContextKey, on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.contexts[key] = on
}

// Context returns the current value of a command-context flag.
func (h *Host) Context(key editor.ContextKey) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.contexts[key]
}

// Activate focuses an editor for the document and announces the change.
func (h *Host) Activate(ctx context.Context, doc *Document) *Editor {
	h.mu.Lock()
	ed := &Editor{doc: doc}
	h.active = ed
	h.mu.Unlock()

	h.publish(ctx, events.TopicEditorActiveChanged, events.EditorActiveChanged{Editor: ed})
	return ed
}

// ActivatePane focuses an editor that holds no text document.
func (h *Host) ActivatePane(ctx context.Context) *Editor {
	h.mu.Lock()
	ed := &Editor{}
	h.active = ed
	h.mu.Unlock()

	h.publish(ctx, events.TopicEditorActiveChanged, events.EditorActiveChanged{Editor: ed})
	return ed
}

// Deactivate drops editor focus and announces the change.
func (h *Host) Deactivate(ctx context.Context) {
	h.mu.Lock()
	h.active = nil
	h.mu.Unlock()

	h.publish(ctx, events.TopicEditorActiveChanged, events.EditorActiveChanged{})
}

// Edit updates a document's dirty state and announces a content change.
func (h *Host) Edit(ctx context.Context, doc *Document, dirty bool) {
	doc.dirty.Store(dirty)
	h.publish(ctx, events.TopicDocumentContentChanged, events.DocumentContentChanged{Document: doc})
}

// Save announces that a document was written to disk.
func (h *Host) Save(ctx context.Context, doc *Document) {
	h.publish(ctx, events.TopicDocumentSaved, events.DocumentSaved{Document: doc})
}

// Close closes a document and announces it.
func (h *Host) Close(ctx context.Context, doc *Document) {
	doc.closed.Store(true)

	h.mu.Lock()
	delete(h.docs, doc.path)
	if h.active != nil && h.active.doc == doc {
		h.active = nil
	}
	h.mu.Unlock()

	h.publish(ctx, events.TopicDocumentClosed, events.DocumentClosed{Document: doc})
}

func (h *Host) publish(ctx context.Context, topic event.Topic, payload any) {
	if h.bus == nil {
		return
	}
	// Lifecycle notifications are best-effort; subscriber errors are the
	// subscriber's problem, not the host's.
	_ = h.bus.Publish(ctx, topic, payload)
}
