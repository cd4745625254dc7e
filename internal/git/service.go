package git

import (
	"path/filepath"
	"sync"
)

// Service resolves file paths to their repositories, caching discovery
// results per directory so that tracking many documents in one repository
// costs a single walk.
type Service struct {
	mu    sync.Mutex
	byDir map[string]*Repository // nil entry: directory known to be outside any repository
}

// NewService creates a repository resolver.
func NewService() *Service {
	return &Service{
		byDir: make(map[string]*Repository),
	}
}

// RepositoryFor returns the repository containing path.
// Returns ErrRepositoryNotFound if no repository contains it.
func (s *Service) RepositoryFor(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)

	s.mu.Lock()
	repo, hit := s.byDir[dir]
	s.mu.Unlock()

	if hit {
		if repo == nil {
			return nil, ErrRepositoryNotFound
		}
		return repo, nil
	}

	repo, err = Discover(dir)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if err == ErrRepositoryNotFound {
			s.byDir[dir] = nil
		}
		return nil, err
	}

	// Reuse an existing handle when another directory already resolved to
	// the same root.
	for _, existing := range s.byDir {
		if existing != nil && existing.root == repo.root {
			repo = existing
			break
		}
	}
	s.byDir[dir] = repo
	return repo, nil
}

// Reset discards all cached discovery results.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDir = make(map[string]*Repository)
}
