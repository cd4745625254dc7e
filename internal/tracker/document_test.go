package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/korigod/gitlens/internal/config"
	"github.com/korigod/gitlens/internal/editor"
	"github.com/korigod/gitlens/internal/editor/memory"
	"github.com/korigod/gitlens/internal/git"
)

// newTestDocument creates a tracked document for a file in a plain temp
// directory, outside any repository. Initialization succeeds with the
// document not blameable, which is all the dirty-state machinery needs.
func newTestDocument(t *testing.T) (*TrackedDocument, *memory.Document) {
	t.Helper()

	host := memory.NewHost(nil)
	path := filepath.Join(t.TempDir(), "main.go")
	doc, err := host.OpenDocument(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	td := newTrackedDocument(doc, DocumentStateKey(doc), false, config.NewStore(), git.NewService(), nil)
	if err := td.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("EnsureInitialized() failed: %v", err)
	}
	return td, doc.(*memory.Document)
}

func TestTrackedDocument_InitialState(t *testing.T) {
	td, doc := newTestDocument(t)

	if td.Document() != editor.Document(doc) {
		t.Error("Document() does not return the underlying buffer")
	}
	if td.Key() != DocumentStateKey(doc) {
		t.Errorf("Key() = %q, want canonical key", td.Key())
	}
	if td.IsDirty() {
		t.Error("expected clean document")
	}
	if td.IsDirtyIdle() {
		t.Error("expected document to not be dirty-idle")
	}
	if td.IsTracked() || td.IsBlameable() || td.HasRemote() {
		t.Error("file outside a repository must not be tracked, blameable or remote")
	}
	if td.IsRevision() {
		t.Error("working-tree document reported as revision")
	}
	if td.Repository() != nil {
		t.Error("expected nil repository outside source control")
	}
}

func TestTrackedDocument_RevisionDocument(t *testing.T) {
	host := memory.NewHost(nil)
	doc := host.OpenRevision(filepath.Join(t.TempDir(), "main.go"))

	td := newTrackedDocument(doc, DocumentStateKey(doc), false, config.NewStore(), git.NewService(), nil)
	if err := td.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("EnsureInitialized() failed: %v", err)
	}
	if !td.IsRevision() {
		t.Error("expected revision document")
	}
}

func TestTrackedDocument_ConsumeDirtyState(t *testing.T) {
	td, _ := newTestDocument(t)

	if td.consumeDirtyState(false) {
		t.Error("unchanged clean state should not emit")
	}
	if !td.consumeDirtyState(true) {
		t.Error("clean to dirty should emit")
	}
	if !td.IsDirty() {
		t.Error("dirty state not recorded")
	}
	if td.consumeDirtyState(true) {
		t.Error("unchanged dirty state should not emit")
	}
	if !td.consumeDirtyState(false) {
		t.Error("dirty to clean should emit")
	}
}

func TestTrackedDocument_ForceDirtyStateChange(t *testing.T) {
	td, _ := newTestDocument(t)

	td.ForceDirtyStateChange()
	if !td.consumeDirtyState(false) {
		t.Error("forced change should emit without a transition")
	}
	// One-shot: the flag is consumed by the emission.
	if td.consumeDirtyState(false) {
		t.Error("force flag survived its consumption")
	}
}

func TestTrackedDocument_ResetClearsDirtyIdleOnEdit(t *testing.T) {
	td, _ := newTestDocument(t)

	td.setDirtyIdle()
	if !td.IsDirtyIdle() {
		t.Fatal("setDirtyIdle() had no effect")
	}

	td.Reset(ResetReasonConfig)
	if !td.IsDirtyIdle() {
		t.Error("config reset must not clear dirty-idle")
	}

	td.Reset(ResetReasonSave)
	if !td.IsDirtyIdle() {
		t.Error("save reset must not clear dirty-idle")
	}

	td.Reset(ResetReasonDocument)
	if td.IsDirtyIdle() {
		t.Error("edit reset must clear dirty-idle")
	}
}

func TestTrackedDocument_NotBlameableErrors(t *testing.T) {
	td, _ := newTestDocument(t)
	ctx := context.Background()

	if _, err := td.Blame(ctx); !errors.Is(err, ErrNotBlameable) {
		t.Errorf("Blame() = %v, want ErrNotBlameable", err)
	}
	if _, err := td.Diff(ctx); !errors.Is(err, ErrNotBlameable) {
		t.Errorf("Diff() = %v, want ErrNotBlameable", err)
	}
	if _, err := td.Log(ctx, 10); !errors.Is(err, ErrNotBlameable) {
		t.Errorf("Log() = %v, want ErrNotBlameable", err)
	}
}

func TestTrackedDocument_EnsureInitializedHonorsContext(t *testing.T) {
	host := memory.NewHost(nil)
	doc, err := host.OpenDocument(context.Background(), filepath.Join(t.TempDir(), "main.go"))
	if err != nil {
		t.Fatal(err)
	}
	td := newTrackedDocument(doc, DocumentStateKey(doc), false, config.NewStore(), git.NewService(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either outcome is valid depending on whether initialization already
	// finished, but a cancelled context must never hang.
	if err := td.EnsureInitialized(ctx); err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("EnsureInitialized() = %v", err)
	}
}

func TestTrackedDocument_DisposeIdempotent(t *testing.T) {
	td, _ := newTestDocument(t)

	td.setActive(true)
	td.Dispose()
	td.Dispose()

	if td.IsActive() {
		t.Error("disposed document still active")
	}
}

func TestTrackedDocument_BlameStateCallbackAfterInit(t *testing.T) {
	host := memory.NewHost(nil)
	doc, err := host.OpenDocument(context.Background(), filepath.Join(t.TempDir(), "main.go"))
	if err != nil {
		t.Fatal(err)
	}

	// The callback must be able to call back into EnsureInitialized
	// without deadlocking.
	done := make(chan struct{})
	var once sync.Once
	newTrackedDocument(doc, DocumentStateKey(doc), false, config.NewStore(), git.NewService(),
		func(got *TrackedDocument, blameable bool) {
			if err := got.EnsureInitialized(context.Background()); err != nil {
				t.Errorf("EnsureInitialized() inside callback failed: %v", err)
			}
			once.Do(func() { close(done) })
		})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("blame-state callback never fired")
	}
}
