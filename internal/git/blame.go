package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BlameLine is the annotation for a single line of a file.
type BlameLine struct {
	// Hash is the commit that introduced this line.
	Hash string

	// Author is the name of the line's author.
	Author string

	// AuthorEmail is the author's email.
	AuthorEmail string

	// AuthorTime is when the line was authored.
	AuthorTime time.Time

	// Summary is the commit message summary.
	Summary string

	// LineNo is the line number in the blamed revision (1-based).
	LineNo int

	// OriginalLineNo is the line number in the commit that introduced it.
	OriginalLineNo int

	// Content is the line content.
	Content string

	// IsBoundary marks lines from a boundary commit (shallow clone edge).
	IsBoundary bool
}

// Blame is the complete annotation for a file.
type Blame struct {
	// Path is the file path relative to the repository root.
	Path string

	// Lines holds one entry per line of the file, in order.
	Lines []BlameLine
}

// BlameOptions configures blame behavior.
type BlameOptions struct {
	// Rev is the revision to blame. Empty blames the working tree.
	Rev string

	// IgnoreWhitespace ignores whitespace-only changes when attributing
	// lines.
	IgnoreWhitespace bool
}

// BlameFile annotates every line of the file at path.
func (r *Repository) BlameFile(ctx context.Context, path string, opts BlameOptions) (*Blame, error) {
	rel, err := r.Rel(path)
	if err != nil {
		return nil, err
	}

	args := []string{"blame", "--porcelain"}
	if opts.IgnoreWhitespace {
		args = append(args, "-w")
	}
	if opts.Rev != "" {
		args = append(args, opts.Rev)
	}
	args = append(args, "--", rel)

	output, err := r.git(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("blame %s: %w", rel, err)
	}

	return parseBlamePorcelain(rel, output), nil
}

// blameCommit accumulates the per-commit headers of porcelain output.
// Headers appear once per commit; later line groups reference the hash only.
type blameCommit struct {
	author      string
	authorEmail string
	authorTime  time.Time
	summary     string
	boundary    bool
}

// parseBlamePorcelain parses `git blame --porcelain` output.
func parseBlamePorcelain(path, output string) *Blame {
	blame := &Blame{Path: path}
	if output == "" {
		return blame
	}

	commits := make(map[string]*blameCommit)

	var hash string
	var origLine, finalLine int

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}

		// Content lines are tab-prefixed; everything else is a header.
		if line[0] == '\t' {
			entry := BlameLine{
				Hash:           hash,
				LineNo:         finalLine,
				OriginalLineNo: origLine,
				Content:        line[1:],
			}
			if c, ok := commits[hash]; ok {
				entry.Author = c.author
				entry.AuthorEmail = c.authorEmail
				entry.AuthorTime = c.authorTime
				entry.Summary = c.summary
				entry.IsBoundary = c.boundary
			}
			blame.Lines = append(blame.Lines, entry)
			continue
		}

		key, value, _ := strings.Cut(line, " ")

		// A 40-char hex key starts a new line group:
		// <sha> <orig-line> <final-line> [group-size]
		if len(key) == 40 && !strings.ContainsFunc(key, notHex) {
			fields := strings.Fields(value)
			if len(fields) >= 2 {
				hash = key
				origLine, _ = strconv.Atoi(fields[0])
				finalLine, _ = strconv.Atoi(fields[1])
				if _, ok := commits[hash]; !ok {
					commits[hash] = &blameCommit{}
				}
			}
			continue
		}

		c, ok := commits[hash]
		if !ok {
			continue
		}

		switch key {
		case "author":
			c.author = value
		case "author-mail":
			c.authorEmail = strings.Trim(value, "<>")
		case "author-time":
			if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
				c.authorTime = time.Unix(ts, 0)
			}
		case "summary":
			c.summary = value
		case "boundary":
			c.boundary = true
		}
	}

	return blame
}

func notHex(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return false
	case r >= 'a' && r <= 'f':
		return false
	default:
		return true
	}
}
