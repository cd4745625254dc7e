package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// fileLogFormat lays out one commit as 8 newline-separated fields:
// Hash, ShortHash, Subject, AuthorName, AuthorEmail, AuthorTime,
// CommitTime, Parents. Records are separated by NUL.
const fileLogFormat = "%H%n%h%n%s%n%an%n%ae%n%at%n%ct%n%P"

// Commit is a single entry in a file's history.
type Commit struct {
	// Hash is the full commit hash.
	Hash string

	// ShortHash is the abbreviated commit hash.
	ShortHash string

	// Subject is the first line of the commit message.
	Subject string

	// Author is the author name.
	Author string

	// AuthorEmail is the author's email.
	AuthorEmail string

	// AuthorTime is when the commit was authored.
	AuthorTime time.Time

	// CommitTime is when the commit was created.
	CommitTime time.Time

	// Parents are the parent commit hashes.
	Parents []string
}

// LogOptions configures history queries.
type LogOptions struct {
	// MaxCount limits the number of commits returned. Zero means no limit.
	MaxCount int

	// Rev is the revision to start walking from. Empty starts at HEAD.
	Rev string

	// FollowRenames follows the file across renames.
	FollowRenames bool
}

// FileLog returns the commit history touching the file at path, newest
// first.
func (r *Repository) FileLog(ctx context.Context, path string, opts LogOptions) ([]Commit, error) {
	rel, err := r.Rel(path)
	if err != nil {
		return nil, err
	}

	args := []string{"log", "--format=" + fileLogFormat + "%x00"}
	if opts.MaxCount > 0 {
		args = append(args, fmt.Sprintf("-n%d", opts.MaxCount))
	}
	if opts.FollowRenames {
		args = append(args, "--follow")
	}
	if opts.Rev != "" {
		args = append(args, opts.Rev)
	}
	args = append(args, "--", rel)

	output, err := r.git(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", rel, err)
	}

	return parseFileLog(output), nil
}

// parseFileLog parses NUL-separated fileLogFormat records.
func parseFileLog(output string) []Commit {
	var commits []Commit

	for _, record := range strings.Split(output, "\x00") {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}

		fields := strings.Split(record, "\n")
		if len(fields) < 7 {
			continue
		}

		commit := Commit{
			Hash:        fields[0],
			ShortHash:   fields[1],
			Subject:     fields[2],
			Author:      fields[3],
			AuthorEmail: fields[4],
		}
		if ts, err := strconv.ParseInt(fields[5], 10, 64); err == nil {
			commit.AuthorTime = time.Unix(ts, 0)
		}
		if ts, err := strconv.ParseInt(fields[6], 10, 64); err == nil {
			commit.CommitTime = time.Unix(ts, 0)
		}
		if len(fields) >= 8 && fields[7] != "" {
			commit.Parents = strings.Fields(fields[7])
		}

		commits = append(commits, commit)
	}

	return commits
}
