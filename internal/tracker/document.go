package tracker

import (
	"context"
	"errors"
	"sync"

	"github.com/korigod/gitlens/internal/config"
	"github.com/korigod/gitlens/internal/editor"
	"github.com/korigod/gitlens/internal/git"
)

// Errors returned by tracked-document operations.
var (
	// ErrUntrackedDocument indicates the document is not in the cache.
	ErrUntrackedDocument = errors.New("document not tracked")

	// ErrNotBlameable indicates annotations cannot be computed for the
	// document (outside a repository, or the file is not tracked).
	ErrNotBlameable = errors.New("document not blameable")
)

// ResetReason tags a cache invalidation with its cause.
type ResetReason string

// Reset reasons.
const (
	// ResetReasonConfig invalidates because a setting affecting computed
	// annotations changed.
	ResetReasonConfig ResetReason = "config"

	// ResetReasonDocument invalidates because the document was edited.
	ResetReasonDocument ResetReason = "document"

	// ResetReasonSave invalidates because the document was written to
	// disk, which moves the working-tree baseline.
	ResetReasonSave ResetReason = "save"
)

// annotationState is the lazily computed blame/diff/log bundle cached on a
// tracked document between invalidations.
type annotationState struct {
	blame *git.Blame
	diff  *git.FileDiff
	log   []git.Commit
}

// TrackedDocument holds the cached annotation state for one open document.
//
// Entries are created and owned exclusively by the DocumentTracker; nothing
// else holds a strong reference across disposal.
type TrackedDocument struct {
	mu  sync.Mutex
	doc editor.Document
	key string

	dirty                 bool
	dirtyIdle             bool
	active                bool
	forceDirtyStateChange bool
	disposed              bool

	// Derived source-control state, computed during initialization.
	repo      *git.Repository // nil when the file is outside any repository
	tracked   bool
	hasRemote bool
	blameable bool

	state *annotationState

	cfg    *config.Store
	git    *git.Service
	onBlameStateChanged func(td *TrackedDocument, blameable bool)

	initDone chan struct{}
	initErr  error
}

func newTrackedDocument(
	doc editor.Document,
	key string,
	active bool,
	cfg *config.Store,
	gitsvc *git.Service,
	onBlameStateChanged func(td *TrackedDocument, blameable bool),
) *TrackedDocument {
	td := &TrackedDocument{
		doc:                 doc,
		key:                 key,
		active:              active,
		dirty:               doc.IsDirty(),
		cfg:                 cfg,
		git:                 gitsvc,
		onBlameStateChanged: onBlameStateChanged,
		initDone:            make(chan struct{}),
	}
	go td.initialize(context.Background())
	return td
}

// initialize resolves the document's repository and computes its initial
// blame state. Runs once, concurrently with callers blocked in
// EnsureInitialized.
func (td *TrackedDocument) initialize(ctx context.Context) {
	blameable, err := td.computeBlameState(ctx)
	if err != nil {
		td.mu.Lock()
		td.initErr = err
		td.mu.Unlock()
		close(td.initDone)
		return
	}

	// Unblock waiters before announcing: a blame-state subscriber may call
	// back into EnsureInitialized.
	close(td.initDone)

	if td.onBlameStateChanged != nil {
		td.onBlameStateChanged(td, blameable)
	}
}

// computeBlameState resolves the repository, trackedness and remotes for
// the document and stores the results. Returns the new blameable state.
func (td *TrackedDocument) computeBlameState(ctx context.Context) (bool, error) {
	var (
		repo      *git.Repository
		tracked   bool
		hasRemote bool
	)

	repo, err := td.git.RepositoryFor(td.doc.Path())
	switch {
	case err == nil:
		tracked, err = repo.IsTracked(ctx, td.doc.Path())
		if err != nil {
			return false, err
		}
		hasRemote, err = repo.HasRemote(ctx)
		if err != nil {
			return false, err
		}
	case errors.Is(err, git.ErrRepositoryNotFound) || errors.Is(err, git.ErrNotRepository):
		// Not under source control; the document stays tracked by the
		// cache but is not blameable.
		repo = nil
	default:
		return false, err
	}

	td.mu.Lock()
	td.repo = repo
	td.tracked = tracked
	td.hasRemote = hasRemote
	td.blameable = tracked
	blameable := td.blameable
	td.mu.Unlock()

	return blameable, nil
}

// EnsureInitialized blocks until initialization completes and reports its
// outcome. Initialization failures propagate to every waiter.
func (td *TrackedDocument) EnsureInitialized(ctx context.Context) error {
	select {
	case <-td.initDone:
		td.mu.Lock()
		defer td.mu.Unlock()
		return td.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Document returns the underlying buffer handle.
func (td *TrackedDocument) Document() editor.Document {
	return td.doc
}

// Key returns the canonical state key.
func (td *TrackedDocument) Key() string {
	return td.key
}

// IsDirty returns the last dirty state reported via change events.
func (td *TrackedDocument) IsDirty() bool {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.dirty
}

// IsDirtyIdle reports whether the document has been dirty with no edits
// for the configured idle delay.
func (td *TrackedDocument) IsDirtyIdle() bool {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.dirtyIdle
}

// IsActive reports whether the document is shown in the active editor.
func (td *TrackedDocument) IsActive() bool {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.active
}

// IsTracked reports whether the file is tracked by source control.
func (td *TrackedDocument) IsTracked() bool {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.tracked
}

// IsBlameable reports whether blame annotations can be computed.
func (td *TrackedDocument) IsBlameable() bool {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.blameable
}

// HasRemote reports whether the document's repository has a remote.
func (td *TrackedDocument) HasRemote() bool {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.hasRemote
}

// IsRevision reports whether the document shows a committed revision
// rather than working-tree content.
func (td *TrackedDocument) IsRevision() bool {
	return td.doc.Scheme() == editor.SchemeRevision
}

// Repository returns the repository containing the document, or nil.
func (td *TrackedDocument) Repository() *git.Repository {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.repo
}

// ForceDirtyStateChange arms a one-shot flag making the next content
// change emit a dirty-state notification even without a dirty transition.
func (td *TrackedDocument) ForceDirtyStateChange() {
	td.mu.Lock()
	defer td.mu.Unlock()
	td.forceDirtyStateChange = true
}

// consumeDirtyState applies a freshly observed dirty flag. It reports
// whether a dirty-state notification should be emitted, consuming the
// force flag if set. No notification means no state was updated either.
func (td *TrackedDocument) consumeDirtyState(dirty bool) bool {
	td.mu.Lock()
	defer td.mu.Unlock()

	if !td.forceDirtyStateChange && dirty == td.dirty {
		return false
	}
	td.forceDirtyStateChange = false
	td.dirty = dirty
	return true
}

// setDirtyIdle marks the document as dirty-idle.
func (td *TrackedDocument) setDirtyIdle() {
	td.mu.Lock()
	defer td.mu.Unlock()
	td.dirtyIdle = true
}

func (td *TrackedDocument) setActive(active bool) {
	td.mu.Lock()
	defer td.mu.Unlock()
	td.active = active
}

// Reset discards the cached annotation bundle. A reset for
// ResetReasonDocument also clears the dirty-idle state, since any edit
// restarts the idle window.
func (td *TrackedDocument) Reset(reason ResetReason) {
	td.mu.Lock()
	defer td.mu.Unlock()

	td.state = nil
	if reason == ResetReasonDocument {
		td.dirtyIdle = false
	}
}

// refresh discards the cached bundle and recomputes blame state in the
// background. When forceBlameChange is set, a blame-state notification
// fires even if blameability did not change.
func (td *TrackedDocument) refresh(reason ResetReason, forceBlameChange bool) {
	td.Reset(reason)

	go func() {
		ctx := context.Background()
		if err := td.EnsureInitialized(ctx); err != nil {
			return
		}

		td.mu.Lock()
		was := td.blameable
		disposed := td.disposed
		td.mu.Unlock()
		if disposed {
			return
		}

		blameable, err := td.computeBlameState(ctx)
		if err != nil {
			return
		}
		if (forceBlameChange || blameable != was) && td.onBlameStateChanged != nil {
			td.onBlameStateChanged(td, blameable)
		}
	}()
}

// Blame returns the blame annotation bundle for the document, computing it
// on first use and caching it until the next reset when caching is enabled.
func (td *TrackedDocument) Blame(ctx context.Context) (*git.Blame, error) {
	if err := td.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	td.mu.Lock()
	repo := td.repo
	blameable := td.blameable
	if blameable && td.state != nil && td.state.blame != nil {
		blame := td.state.blame
		td.mu.Unlock()
		return blame, nil
	}
	td.mu.Unlock()

	if !blameable {
		return nil, ErrNotBlameable
	}

	blame, err := repo.BlameFile(ctx, td.doc.Path(), git.BlameOptions{
		IgnoreWhitespace: td.cfg.Bool(config.SettingBlameIgnoreWhitespace),
	})
	if err != nil {
		return nil, err
	}

	td.cache(func(s *annotationState) { s.blame = blame })
	return blame, nil
}

// Diff returns the working-tree diff for the document.
func (td *TrackedDocument) Diff(ctx context.Context) (*git.FileDiff, error) {
	if err := td.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	td.mu.Lock()
	repo := td.repo
	tracked := td.tracked
	if tracked && td.state != nil && td.state.diff != nil {
		diff := td.state.diff
		td.mu.Unlock()
		return diff, nil
	}
	td.mu.Unlock()

	if !tracked {
		return nil, ErrNotBlameable
	}

	diff, err := repo.DiffFile(ctx, td.doc.Path(), git.DiffOptions{
		IgnoreWhitespace: td.cfg.Bool(config.SettingBlameIgnoreWhitespace),
	})
	if err != nil {
		return nil, err
	}

	td.cache(func(s *annotationState) { s.diff = diff })
	return diff, nil
}

// Log returns the commit history for the document's file.
func (td *TrackedDocument) Log(ctx context.Context, maxCount int) ([]git.Commit, error) {
	if err := td.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	td.mu.Lock()
	repo := td.repo
	tracked := td.tracked
	if tracked && td.state != nil && td.state.log != nil {
		log := td.state.log
		td.mu.Unlock()
		return log, nil
	}
	td.mu.Unlock()

	if !tracked {
		return nil, ErrNotBlameable
	}

	log, err := repo.FileLog(ctx, td.doc.Path(), git.LogOptions{MaxCount: maxCount})
	if err != nil {
		return nil, err
	}

	td.cache(func(s *annotationState) { s.log = log })
	return log, nil
}

// cache stores a computed result, respecting the caching setting.
func (td *TrackedDocument) cache(update func(*annotationState)) {
	if !td.cfg.Bool(config.SettingCachingEnabled) {
		return
	}

	td.mu.Lock()
	defer td.mu.Unlock()
	if td.disposed {
		return
	}
	if td.state == nil {
		td.state = &annotationState{}
	}
	update(td.state)
}

// Dispose releases the entry. Idempotent; disposing an already-disposed
// document is a no-op.
func (td *TrackedDocument) Dispose() {
	td.mu.Lock()
	defer td.mu.Unlock()

	td.disposed = true
	td.state = nil
	td.active = false
}
