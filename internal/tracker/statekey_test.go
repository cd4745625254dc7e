package tracker

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/korigod/gitlens/internal/editor/memory"
)

func TestToStateKey_PathAndURIAgree(t *testing.T) {
	path := filepath.Join(string(filepath.Separator), "Projects", "App", "Main.go")
	uri := "file://" + filepath.ToSlash(path)

	if pk, uk := ToStateKey(path), ToStateKey(uri); pk != uk {
		t.Errorf("path key %q != URI key %q", pk, uk)
	}
}

func TestToStateKey_CaseFolds(t *testing.T) {
	a := ToStateKey("/Projects/App/MAIN.GO")
	b := ToStateKey("/projects/app/main.go")
	if a != b {
		t.Errorf("keys differ by case: %q vs %q", a, b)
	}
}

func TestToStateKey_CleansPath(t *testing.T) {
	a := ToStateKey("/projects/app/../app/main.go")
	b := ToStateKey("/projects/app/main.go")
	if a != b {
		t.Errorf("keys differ after cleaning: %q vs %q", a, b)
	}
}

func TestToStateKey_SlashSeparated(t *testing.T) {
	key := ToStateKey(filepath.Join(string(filepath.Separator), "projects", "app", "main.go"))
	if strings.Contains(key, "\\") {
		t.Errorf("key %q contains backslashes", key)
	}
}

func TestToStateKey_RelativeBecomesAbsolute(t *testing.T) {
	key := ToStateKey("main.go")
	if runtime.GOOS != "windows" && !strings.HasPrefix(key, "/") {
		t.Errorf("key %q is not absolute", key)
	}
}

func TestToStateKey_Deterministic(t *testing.T) {
	id := "/projects/app/main.go"
	if ToStateKey(id) != ToStateKey(id) {
		t.Error("same identity produced different keys")
	}
}

func TestDocumentStateKey_RevisionDoesNotCollide(t *testing.T) {
	host := memory.NewHost(nil)

	working, err := host.OpenDocument(context.Background(), "/projects/app/main.go")
	if err != nil {
		t.Fatal(err)
	}
	revision := host.OpenRevision("/projects/app/main.go")

	wk := DocumentStateKey(working)
	rk := DocumentStateKey(revision)
	if wk == rk {
		t.Errorf("revision key %q collides with working-tree key", rk)
	}
	if wk != ToStateKey("/projects/app/main.go") {
		t.Errorf("working-tree key %q, want canonical path key", wk)
	}
}
