package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repository is a handle to a local git repository.
type Repository struct {
	root string
}

// Open opens the repository rooted at path.
func Open(path string) (*Repository, error) {
	gitDir := filepath.Join(path, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("stat .git: %w", err)
	}

	// .git is a file for worktrees and submodules.
	if !info.IsDir() {
		content, err := os.ReadFile(gitDir)
		if err != nil {
			return nil, fmt.Errorf("read .git file: %w", err)
		}
		if !bytes.HasPrefix(content, []byte("gitdir:")) {
			return nil, ErrNotRepository
		}
	}

	return &Repository{root: path}, nil
}

// Discover walks up from path until it finds a repository root.
func Discover(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}

	current := abs
	if info, err := os.Stat(current); err == nil && !info.IsDir() {
		current = filepath.Dir(current)
	}

	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return Open(current)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, ErrRepositoryNotFound
		}
		current = parent
	}
}

// Root returns the repository root path.
func (r *Repository) Root() string {
	return r.root
}

// Rel converts an absolute path to a slash-separated path relative to the
// repository root, the form git expects in pathspecs.
func (r *Repository) Rel(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}

	rel, err := filepath.Rel(r.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRepository, path)
	}
	return filepath.ToSlash(rel), nil
}

// IsTracked reports whether the file at path is tracked by git.
func (r *Repository) IsTracked(ctx context.Context, path string) (bool, error) {
	rel, err := r.Rel(path)
	if err != nil {
		return false, err
	}

	_, err = r.git(ctx, "ls-files", "--error-unmatch", "--", rel)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HasRemote reports whether the repository has at least one remote.
func (r *Repository) HasRemote(ctx context.Context) (bool, error) {
	remotes, err := r.Remotes(ctx)
	if err != nil {
		return false, err
	}
	return len(remotes) > 0, nil
}

// git runs a git command in the repository root and returns its stdout.
func (r *Repository) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root
	// Never block on credential or terminal prompts, and keep output
	// parseable regardless of the user's locale.
	cmd.Env = append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"GIT_OPTIONAL_LOCKS=0",
		"LC_ALL=C",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &CommandError{
			Args:     args,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	return stdout.String(), nil
}
