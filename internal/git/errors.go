package git

import (
	"errors"
	"fmt"
)

// Errors returned by repository operations.
var (
	// ErrNotRepository indicates the path is not a git repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrRepositoryNotFound indicates no repository contains the path.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrFileNotTracked indicates the file is not tracked by git.
	ErrFileNotTracked = errors.New("file not tracked")

	// ErrPathOutsideRepository indicates the path is not under the
	// repository root.
	ErrPathOutsideRepository = errors.New("path outside repository")
)

// CommandError is returned when the git binary exits non-zero.
type CommandError struct {
	// Args are the git arguments that were run.
	Args []string

	// ExitCode is the process exit code.
	ExitCode int

	// Stderr is the captured standard error output.
	Stderr string

	// Err is the underlying exec error.
	Err error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %v: %s", e.Args, e.Stderr)
	}
	return fmt.Sprintf("git %v: %v", e.Args, e.Err)
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}
