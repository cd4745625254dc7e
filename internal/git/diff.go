package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Hunk is a contiguous changed region in a unified diff.
type Hunk struct {
	// OldStart is the first affected line in the old version (1-based).
	OldStart int

	// OldLines is the number of lines in the old version.
	OldLines int

	// NewStart is the first affected line in the new version (1-based).
	NewStart int

	// NewLines is the number of lines in the new version.
	NewLines int

	// Header is the raw @@ header line.
	Header string

	// Lines are the hunk body lines including their +/-/space prefixes.
	Lines []string
}

// FileDiff is the unified diff for a single file.
type FileDiff struct {
	// Path is the file path relative to the repository root.
	Path string

	// Hunks are the changed regions, in file order.
	Hunks []Hunk
}

// HasChanges reports whether the diff contains any hunks.
func (d *FileDiff) HasChanges() bool {
	return len(d.Hunks) > 0
}

// DiffOptions configures diff behavior.
type DiffOptions struct {
	// Rev is the revision to diff the working tree against.
	// Empty diffs against the index.
	Rev string

	// IgnoreWhitespace ignores whitespace-only changes.
	IgnoreWhitespace bool

	// Context is the number of context lines per hunk. Zero uses git's
	// default of 3.
	Context int
}

// DiffFile returns the working-tree diff for the file at path.
func (r *Repository) DiffFile(ctx context.Context, path string, opts DiffOptions) (*FileDiff, error) {
	rel, err := r.Rel(path)
	if err != nil {
		return nil, err
	}

	args := []string{"diff", "--no-color", "--no-ext-diff"}
	if opts.IgnoreWhitespace {
		args = append(args, "-w")
	}
	if opts.Context > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.Context))
	}
	if opts.Rev != "" {
		args = append(args, opts.Rev)
	}
	args = append(args, "--", rel)

	output, err := r.git(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", rel, err)
	}

	return parseFileDiff(rel, output), nil
}

// parseFileDiff parses single-file unified diff output.
func parseFileDiff(path, output string) *FileDiff {
	diff := &FileDiff{Path: path}

	var current *Hunk
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "@@") {
			if current != nil {
				diff.Hunks = append(diff.Hunks, *current)
			}
			current = parseHunkHeader(line)
			continue
		}
		if current == nil {
			// Still in the file header (diff --git, index, +++/---).
			continue
		}
		if line == "" {
			continue
		}
		switch line[0] {
		case '+', '-', ' ', '\\':
			current.Lines = append(current.Lines, line)
		}
	}
	if current != nil {
		diff.Hunks = append(diff.Hunks, *current)
	}

	return diff
}

// parseHunkHeader parses "@@ -oldStart[,oldLines] +newStart[,newLines] @@ ...".
func parseHunkHeader(line string) *Hunk {
	h := &Hunk{Header: line, OldLines: 1, NewLines: 1}

	body := strings.TrimPrefix(line, "@@")
	if idx := strings.Index(body, "@@"); idx >= 0 {
		body = body[:idx]
	}

	for _, field := range strings.Fields(body) {
		if len(field) < 2 {
			continue
		}
		start, count := parseHunkRange(field[1:])
		switch field[0] {
		case '-':
			h.OldStart, h.OldLines = start, count
		case '+':
			h.NewStart, h.NewLines = start, count
		}
	}

	return h
}

func parseHunkRange(s string) (start, count int) {
	count = 1
	startStr, countStr, hasCount := strings.Cut(s, ",")
	start, _ = strconv.Atoi(startStr)
	if hasCount {
		count, _ = strconv.Atoi(countStr)
	}
	return start, count
}
