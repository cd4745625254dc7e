package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/juju/clock"

	"github.com/korigod/gitlens/internal/config"
	"github.com/korigod/gitlens/internal/debounce"
	"github.com/korigod/gitlens/internal/editor"
	"github.com/korigod/gitlens/internal/event"
	"github.com/korigod/gitlens/internal/event/events"
	"github.com/korigod/gitlens/internal/git"
)

// cleanSettleDelay is how long a clean transition must hold before it is
// announced. Dirty transitions announce immediately; clean ones settle so
// an undo that briefly passes through the saved state mid-edit does not
// flicker the annotations.
const cleanSettleDelay = 250 * time.Millisecond

// dirtyStateEvent is the payload carried through the dirty/idle deferrals.
type dirtyStateEvent struct {
	editor   editor.Editor
	document *TrackedDocument
	dirty    bool
}

// contextKeys are the command-context flags maintained for the active
// document.
var contextKeys = []editor.ContextKey{
	editor.ContextActiveIsRevision,
	editor.ContextActiveFileTracked,
	editor.ContextActiveIsBlameable,
	editor.ContextActiveHasRemote,
}

// DocumentTracker owns the tracked-document cache and drives dirty-state
// and idle-after-edit detection from host editor events.
//
// The cache is dual-keyed: every live entry is reachable under its buffer
// handle (while the buffer stays open) and under its canonical state key.
// Both mappings are inserted and evicted together.
type DocumentTracker struct {
	host editor.Host
	cfg  *config.Store
	git  *git.Service
	bus  *event.Bus
	clk  clock.Clock

	mu         sync.Mutex
	byDocument map[editor.Document]*TrackedDocument
	byKey      map[string]*TrackedDocument

	dirtyIdleDelay     time.Duration
	dirtyIdleTriggered *debounce.Deferred[dirtyStateEvent]
	dirtyStateChanged  *debounce.Deferred[dirtyStateEvent]

	cfgSub  *config.Subscription
	busSubs []*event.Subscription
}

// Option configures a DocumentTracker.
type Option func(*DocumentTracker)

// WithClock sets the clock used for debounce timing. Defaults to the wall
// clock; tests substitute a manual clock.
func WithClock(clk clock.Clock) Option {
	return func(t *DocumentTracker) {
		t.clk = clk
	}
}

// New creates a document tracker. It subscribes to configuration changes
// immediately; editor lifecycle events flow in through Bind or by calling
// the Handle methods directly.
func New(host editor.Host, cfg *config.Store, gitsvc *git.Service, bus *event.Bus, opts ...Option) *DocumentTracker {
	t := &DocumentTracker{
		host:       host,
		cfg:        cfg,
		git:        gitsvc,
		bus:        bus,
		clk:        clock.WallClock,
		byDocument: make(map[editor.Document]*TrackedDocument),
		byKey:      make(map[string]*TrackedDocument),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.dirtyIdleDelay = cfg.Duration(config.SettingBlameDelayAfterEdit)
	t.cfgSub = cfg.Subscribe(t.handleConfigurationChanged)

	return t
}

// Bind subscribes the tracker's handlers to editor lifecycle topics on the
// bus the host publishes to.
func (t *DocumentTracker) Bind(bus *event.Bus) error {
	type binding struct {
		topic event.Topic
		fn    event.HandlerFunc
	}

	bindings := []binding{
		{events.TopicEditorActiveChanged, func(ctx context.Context, e any) error {
			if ev, ok := e.(events.EditorActiveChanged); ok {
				t.HandleActiveEditorChanged(ctx, ev.Editor)
			}
			return nil
		}},
		{events.TopicDocumentContentChanged, func(ctx context.Context, e any) error {
			if ev, ok := e.(events.DocumentContentChanged); ok {
				t.HandleDocumentChanged(ctx, ev.Document)
			}
			return nil
		}},
		{events.TopicDocumentClosed, func(ctx context.Context, e any) error {
			if ev, ok := e.(events.DocumentClosed); ok {
				t.HandleDocumentClosed(ctx, ev.Document)
			}
			return nil
		}},
		{events.TopicDocumentSaved, func(ctx context.Context, e any) error {
			if ev, ok := e.(events.DocumentSaved); ok {
				t.HandleDocumentSaved(ctx, ev.Document)
			}
			return nil
		}},
	}

	for _, b := range bindings {
		sub, err := bus.SubscribeFunc(b.topic, b.fn)
		if err != nil {
			return err
		}
		t.busSubs = append(t.busSubs, sub)
	}
	return nil
}

// Add resolves an identity (path or file URI) to a tracked document,
// opening the document through the host if needed, and waits for its
// annotation state to initialize.
//
// Concurrent calls for the same identity never create duplicate entries;
// later callers observe the first caller's in-flight entry.
func (t *DocumentTracker) Add(ctx context.Context, identity string) (*TrackedDocument, error) {
	key := ToStateKey(identity)

	t.mu.Lock()
	td := t.byKey[key]
	t.mu.Unlock()

	if td == nil {
		doc, err := t.host.OpenDocument(ctx, identity)
		if err != nil {
			return nil, err
		}
		td = t.track(doc)
	}

	if err := td.EnsureInitialized(ctx); err != nil {
		return nil, err
	}
	return td, nil
}

// AddDocument tracks an already-open document and waits for its annotation
// state to initialize.
func (t *DocumentTracker) AddDocument(ctx context.Context, doc editor.Document) (*TrackedDocument, error) {
	td := t.track(doc)
	if err := td.EnsureInitialized(ctx); err != nil {
		return nil, err
	}
	return td, nil
}

// Get returns the tracked document for an identity after ensuring its
// initialization finished. Returns ErrUntrackedDocument when absent; Get
// never creates entries.
func (t *DocumentTracker) Get(ctx context.Context, identity string) (*TrackedDocument, error) {
	t.mu.Lock()
	td := t.byKey[ToStateKey(identity)]
	t.mu.Unlock()

	if td == nil {
		return nil, ErrUntrackedDocument
	}
	if err := td.EnsureInitialized(ctx); err != nil {
		return nil, err
	}
	return td, nil
}

// GetDocument is Get keyed by a live buffer handle.
func (t *DocumentTracker) GetDocument(ctx context.Context, doc editor.Document) (*TrackedDocument, error) {
	td := t.lookup(doc)
	if td == nil {
		return nil, ErrUntrackedDocument
	}
	if err := td.EnsureInitialized(ctx); err != nil {
		return nil, err
	}
	return td, nil
}

// GetOrAdd returns the tracked document for an identity, creating it if it
// is not yet tracked.
func (t *DocumentTracker) GetOrAdd(ctx context.Context, identity string) (*TrackedDocument, error) {
	td, err := t.Get(ctx, identity)
	if errors.Is(err, ErrUntrackedDocument) {
		return t.Add(ctx, identity)
	}
	return td, err
}

// GetOrAddDocument is GetOrAdd keyed by a live buffer handle.
func (t *DocumentTracker) GetOrAddDocument(ctx context.Context, doc editor.Document) (*TrackedDocument, error) {
	return t.AddDocument(ctx, doc)
}

// Has reports whether an identity is tracked. No initialization side
// effects.
func (t *DocumentTracker) Has(identity string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.byKey[ToStateKey(identity)]
	return ok
}

// HasDocument reports whether a live buffer handle is tracked.
func (t *DocumentTracker) HasDocument(doc editor.Document) bool {
	return t.lookup(doc) != nil
}

// Count returns the number of tracked documents.
func (t *DocumentTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byKey)
}

// Clear disposes and evicts every entry.
func (t *DocumentTracker) Clear() {
	t.mu.Lock()
	entries := make([]*TrackedDocument, 0, len(t.byKey))
	for _, td := range t.byKey {
		entries = append(entries, td)
	}
	t.byDocument = make(map[editor.Document]*TrackedDocument)
	t.byKey = make(map[string]*TrackedDocument)
	t.mu.Unlock()

	for _, td := range entries {
		td.Dispose()
	}
}

// Close tears the tracker down: unsubscribes from configuration and bus
// topics, cancels pending deferrals and clears the cache.
func (t *DocumentTracker) Close() {
	if t.cfgSub != nil {
		t.cfgSub.Unsubscribe()
	}
	for _, sub := range t.busSubs {
		if t.bus != nil {
			_ = t.bus.Unsubscribe(sub)
		}
	}
	t.busSubs = nil

	t.mu.Lock()
	if t.dirtyIdleTriggered != nil {
		t.dirtyIdleTriggered.Cancel()
		t.dirtyIdleTriggered = nil
	}
	if t.dirtyStateChanged != nil {
		t.dirtyStateChanged.Cancel()
		t.dirtyStateChanged = nil
	}
	t.mu.Unlock()

	t.Clear()
}

// lookup finds an entry by live handle, falling back to the canonical key
// so that a fresh handle for an already-tracked file still resolves.
func (t *DocumentTracker) lookup(doc editor.Document) *TrackedDocument {
	t.mu.Lock()
	defer t.mu.Unlock()

	if td, ok := t.byDocument[doc]; ok {
		return td
	}
	return t.byKey[DocumentStateKey(doc)]
}

// track looks up or creates the entry for a document. Creation inserts
// both cache mappings before any asynchronous work starts, so concurrent
// callers dedupe on the in-flight entry.
func (t *DocumentTracker) track(doc editor.Document) *TrackedDocument {
	t.mu.Lock()
	defer t.mu.Unlock()

	if td, ok := t.byDocument[doc]; ok {
		return td
	}
	key := DocumentStateKey(doc)
	if td, ok := t.byKey[key]; ok {
		// Same file under a fresh buffer handle; map the handle too.
		t.byDocument[doc] = td
		return td
	}

	active := false
	if ae := t.host.ActiveEditor(); ae != nil && ae.Document() == doc {
		active = true
	}

	td := newTrackedDocument(doc, key, active, t.cfg, t.git, t.publishBlameStateChanged)
	t.byDocument[doc] = td
	t.byKey[key] = td

	if active {
		t.applyContextWhenReady(td)
	}
	return td
}

// HandleActiveEditorChanged reacts to editor focus moving. A nil editor
// means nothing has focus; editors without a text document are ignored.
func (t *DocumentTracker) HandleActiveEditorChanged(ctx context.Context, e editor.Editor) {
	if e == nil {
		t.clearContext()
		return
	}

	doc := e.Document()
	if doc == nil {
		return
	}

	if td := t.lookup(doc); td != nil {
		t.activate(td)
		return
	}

	t.activate(t.track(doc))
}

// HandleDocumentChanged reacts to a content change. Any edit invalidates
// the cached annotation bundle: serving a cache hit after an edit would
// paint stale annotations, so correctness wins over the recompute cost.
func (t *DocumentTracker) HandleDocumentChanged(ctx context.Context, doc editor.Document) {
	if doc == nil || doc.Scheme() != editor.SchemeFile {
		return
	}

	td := t.track(doc)
	td.Reset(ResetReasonDocument)

	dirty := doc.IsDirty()

	// Any edit restarts the idle countdown, dirty transition or not.
	t.mu.Lock()
	idle := t.dirtyIdleTriggered
	t.mu.Unlock()
	if idle != nil {
		if dirty {
			idle.Schedule(dirtyStateEvent{editor: t.host.ActiveEditor(), document: td, dirty: dirty})
		} else {
			idle.Cancel()
		}
	}

	if !td.consumeDirtyState(dirty) {
		return
	}

	if ae := t.host.ActiveEditor(); ae != nil && ae.Document() == doc {
		t.fireDocumentDirtyStateChanged(dirtyStateEvent{editor: ae, document: td, dirty: dirty})
	}
}

// HandleDocumentClosed evicts a closed document from the cache under both
// of its keys. Several live handles can map onto one entry, so eviction
// sweeps every handle pointing at it; leaving one behind would resurrect
// the disposed entry on the next lookup.
func (t *DocumentTracker) HandleDocumentClosed(ctx context.Context, doc editor.Document) {
	t.mu.Lock()
	td, ok := t.byDocument[doc]
	if !ok {
		t.mu.Unlock()
		return
	}
	for h, entry := range t.byDocument {
		if entry == td {
			delete(t.byDocument, h)
		}
	}
	delete(t.byKey, td.key)
	t.mu.Unlock()

	td.Dispose()
}

// HandleDocumentSaved reacts to a save. An already-tracked document gets a
// forced blame refresh; an untracked one is adopted if it sits in the
// active editor, since a save can be the first observation of a document.
func (t *DocumentTracker) HandleDocumentSaved(ctx context.Context, doc editor.Document) {
	if td := t.lookup(doc); td != nil {
		td.refresh(ResetReasonSave, true)
		return
	}

	if ae := t.host.ActiveEditor(); ae != nil && ae.Document() == doc {
		t.track(doc)
	}
}

// handleConfigurationChanged reacts to setting changes.
func (t *DocumentTracker) handleConfigurationChanged(change config.Change) {
	switch change.Path {
	case config.SettingBlameIgnoreWhitespace, config.SettingCachingEnabled:
		if change.Initial {
			return
		}
		t.mu.Lock()
		entries := make([]*TrackedDocument, 0, len(t.byKey))
		for _, td := range t.byKey {
			entries = append(entries, td)
		}
		t.mu.Unlock()
		for _, td := range entries {
			td.Reset(ResetReasonConfig)
		}

	case config.SettingBlameDelayAfterEdit:
		t.mu.Lock()
		t.dirtyIdleDelay = asDuration(change.NewValue)
		// Discard the deferral; it is recreated lazily with the new delay.
		if t.dirtyIdleTriggered != nil {
			t.dirtyIdleTriggered.Cancel()
			t.dirtyIdleTriggered = nil
		}
		t.mu.Unlock()
	}
}

// fireDocumentDirtyStateChanged dispatches a dirty-state transition for
// the active editor's document.
//
// Dirty announces on the next tick: the UI should reflect "now editing"
// fast. Clean settles for cleanSettleDelay first. Dirty transitions also
// arm the idle-trigger deferral when an idle delay is configured.
func (t *DocumentTracker) fireDocumentDirtyStateChanged(ev dirtyStateEvent) {
	if ev.dirty {
		go t.emitDirtyNow(ev)

		t.mu.Lock()
		delay := t.dirtyIdleDelay
		if delay > 0 && t.dirtyIdleTriggered == nil {
			t.dirtyIdleTriggered = debounce.NewDeferred(delay, t.emitDirtyIdle, debounce.WithClock[dirtyStateEvent](t.clk))
		}
		idle := t.dirtyIdleTriggered
		t.mu.Unlock()

		if delay > 0 {
			idle.Schedule(ev)
		}
		return
	}

	t.mu.Lock()
	if t.dirtyStateChanged == nil {
		t.dirtyStateChanged = debounce.NewDeferred(cleanSettleDelay, t.emitDirtySettled, debounce.WithClock[dirtyStateEvent](t.clk))
	}
	settled := t.dirtyStateChanged
	t.mu.Unlock()

	settled.Schedule(ev)
}

// emitDirtyNow announces a dirty transition after cancelling any pending
// became-clean deferral. The active editor is re-checked after every
// suspension point: the cache entry may have changed underneath us.
func (t *DocumentTracker) emitDirtyNow(ev dirtyStateEvent) {
	t.mu.Lock()
	if t.dirtyStateChanged != nil {
		t.dirtyStateChanged.Cancel()
	}
	t.mu.Unlock()

	if t.host.ActiveEditor() != ev.editor {
		return
	}
	if err := ev.document.EnsureInitialized(context.Background()); err != nil {
		return
	}
	if t.host.ActiveEditor() != ev.editor {
		return
	}

	t.publishDirtyStateChanged(ev)
}

// emitDirtySettled announces a clean transition once it has held for the
// settle delay.
func (t *DocumentTracker) emitDirtySettled(ev dirtyStateEvent) {
	if t.host.ActiveEditor() != ev.editor {
		return
	}
	if err := ev.document.EnsureInitialized(context.Background()); err != nil {
		return
	}
	if t.host.ActiveEditor() != ev.editor {
		return
	}

	t.publishDirtyStateChanged(ev)
}

// emitDirtyIdle fires after the idle delay elapses with no rescheduling
// edit.
func (t *DocumentTracker) emitDirtyIdle(ev dirtyStateEvent) {
	if err := ev.document.EnsureInitialized(context.Background()); err != nil {
		return
	}

	ev.document.setDirtyIdle()
	t.publish(events.TopicDocumentDirtyIdleTriggered, events.DocumentDirtyIdleTriggered{
		Editor:   ev.editor,
		Document: ev.document.Document(),
		Key:      ev.document.Key(),
	})
}

// activate marks one entry as the active document and refreshes the
// command-context flags for it.
func (t *DocumentTracker) activate(td *TrackedDocument) {
	t.mu.Lock()
	for _, other := range t.byKey {
		if other != td {
			other.setActive(false)
		}
	}
	t.mu.Unlock()

	td.setActive(true)
	t.applyContextWhenReady(td)
}

// applyContextWhenReady updates the command-context flags once the entry's
// initialization completes, re-checking that it is still the active
// document before touching host state.
func (t *DocumentTracker) applyContextWhenReady(td *TrackedDocument) {
	go func() {
		if err := td.EnsureInitialized(context.Background()); err != nil {
			return
		}
		ae := t.host.ActiveEditor()
		if ae == nil || ae.Document() != td.Document() {
			return
		}

		t.host.SetContext(editor.ContextActiveIsRevision, td.IsRevision())
		t.host.SetContext(editor.ContextActiveFileTracked, td.IsTracked())
		t.host.SetContext(editor.ContextActiveIsBlameable, td.IsBlameable())
		t.host.SetContext(editor.ContextActiveHasRemote, td.HasRemote())
	}()
}

// clearContext resets every command-context flag; no trackable document is
// active.
func (t *DocumentTracker) clearContext() {
	for _, key := range contextKeys {
		t.host.SetContext(key, false)
	}
}

func (t *DocumentTracker) publishBlameStateChanged(td *TrackedDocument, blameable bool) {
	t.publish(events.TopicDocumentBlameStateChanged, events.DocumentBlameStateChanged{
		Document:  td.Document(),
		Key:       td.Key(),
		Blameable: blameable,
	})
}

func (t *DocumentTracker) publishDirtyStateChanged(ev dirtyStateEvent) {
	t.publish(events.TopicDocumentDirtyStateChanged, events.DocumentDirtyStateChanged{
		Editor:   ev.editor,
		Document: ev.document.Document(),
		Key:      ev.document.Key(),
		Dirty:    ev.dirty,
	})
}

// publish sends an event on the bus. Subscriber errors are the
// subscriber's concern; the tracker does not fail on them.
func (t *DocumentTracker) publish(topic event.Topic, payload any) {
	if t.bus == nil {
		return
	}
	_ = t.bus.Publish(context.Background(), topic, payload)
}

// asDuration interprets a raw setting value as milliseconds.
func asDuration(v any) time.Duration {
	switch n := v.(type) {
	case int:
		return time.Duration(n) * time.Millisecond
	case int64:
		return time.Duration(n) * time.Millisecond
	default:
		return 0
	}
}
