package tracker

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/korigod/gitlens/internal/editor"
)

// ToStateKey normalizes a document identity (filesystem path or file URI)
// into the canonical cache key: absolute, slash-separated, case-folded.
//
// Every representation of the same file maps to the same key, so the key
// stays stable across buffer reopens while the live handle does not.
func ToStateKey(identity string) string {
	path := identity

	if strings.Contains(identity, "://") {
		if u, err := url.Parse(identity); err == nil && u.Path != "" {
			path = filepath.FromSlash(u.Path)
		}
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	path = filepath.ToSlash(filepath.Clean(path))
	return strings.ToLower(path)
}

// DocumentStateKey returns the canonical key for an open document.
// Revision documents key by their full URI so that a revision view of a
// file never collides with the working-tree buffer for the same path.
func DocumentStateKey(doc editor.Document) string {
	if doc.Scheme() == editor.SchemeFile {
		return ToStateKey(doc.Path())
	}
	return strings.ToLower(doc.URI())
}
