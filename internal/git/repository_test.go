package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// initRepoDir fakes a repository layout on disk. Discovery only inspects
// the filesystem, so no git binary is needed.
func initRepoDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestOpen(t *testing.T) {
	root := initRepoDir(t)

	repo, err := Open(root)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if repo.Root() != root {
		t.Errorf("Root() = %q, want %q", repo.Root(), root)
	}
}

func TestOpen_NotRepository(t *testing.T) {
	if _, err := Open(t.TempDir()); !errors.Is(err, ErrNotRepository) {
		t.Errorf("expected ErrNotRepository, got %v", err)
	}
}

func TestOpen_WorktreeGitFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: /elsewhere/.git/worktrees/x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(root); err != nil {
		t.Errorf("Open() of worktree failed: %v", err)
	}
}

func TestOpen_BogusGitFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".git"), []byte("not a worktree pointer"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(root); !errors.Is(err, ErrNotRepository) {
		t.Errorf("expected ErrNotRepository, got %v", err)
	}
}

func TestDiscover(t *testing.T) {
	root := initRepoDir(t)
	nested := filepath.Join(root, "internal", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	repo, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if repo.Root() != root {
		t.Errorf("Root() = %q, want %q", repo.Root(), root)
	}
}

func TestDiscover_FilePath(t *testing.T) {
	root := initRepoDir(t)
	file := filepath.Join(root, "main.go")
	if err := os.WriteFile(file, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	repo, err := Discover(file)
	if err != nil {
		t.Fatalf("Discover() on a file path failed: %v", err)
	}
	if repo.Root() != root {
		t.Errorf("Root() = %q, want %q", repo.Root(), root)
	}
}

func TestDiscover_NotFound(t *testing.T) {
	if _, err := Discover(t.TempDir()); !errors.Is(err, ErrRepositoryNotFound) {
		// Only possible when a parent of the test tmpdir is itself a
		// repository.
		t.Skipf("temp dir is inside a repository: %v", err)
	}
}

func TestRepository_Rel(t *testing.T) {
	root := initRepoDir(t)
	repo, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}

	rel, err := repo.Rel(filepath.Join(root, "internal", "app", "main.go"))
	if err != nil {
		t.Fatalf("Rel() failed: %v", err)
	}
	if rel != "internal/app/main.go" {
		t.Errorf("Rel() = %q, want %q", rel, "internal/app/main.go")
	}
}

func TestRepository_RelOutside(t *testing.T) {
	repo, err := Open(initRepoDir(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Rel(t.TempDir()); !errors.Is(err, ErrPathOutsideRepository) {
		t.Errorf("expected ErrPathOutsideRepository, got %v", err)
	}
}

func TestService_RepositoryFor(t *testing.T) {
	root := initRepoDir(t)
	svc := NewService()

	repo1, err := svc.RepositoryFor(filepath.Join(root, "a.go"))
	if err != nil {
		t.Fatalf("RepositoryFor() failed: %v", err)
	}
	repo2, err := svc.RepositoryFor(filepath.Join(root, "b.go"))
	if err != nil {
		t.Fatalf("RepositoryFor() failed: %v", err)
	}
	if repo1 != repo2 {
		t.Error("expected files in the same directory to share one repository handle")
	}

	// A different directory under the same root reuses the handle too.
	sub := filepath.Join(root, "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	repo3, err := svc.RepositoryFor(filepath.Join(sub, "c.go"))
	if err != nil {
		t.Fatalf("RepositoryFor() failed: %v", err)
	}
	if repo3 != repo1 {
		t.Error("expected nested directory to reuse the discovered handle")
	}
}

func TestService_NegativeCache(t *testing.T) {
	dir := t.TempDir()
	svc := NewService()

	_, err := svc.RepositoryFor(filepath.Join(dir, "a.go"))
	if !errors.Is(err, ErrRepositoryNotFound) {
		t.Skipf("temp dir is inside a repository: %v", err)
	}

	// Second lookup hits the negative cache.
	if _, err := svc.RepositoryFor(filepath.Join(dir, "b.go")); !errors.Is(err, ErrRepositoryNotFound) {
		t.Errorf("expected ErrRepositoryNotFound from cache, got %v", err)
	}
}
