package git

import (
	"testing"
	"time"
)

const fileLogSample = "9a8b7c6d5e4f3a2b1c0d9e8f7a6b5c4d3e2f1a0b\n" +
	"9a8b7c6\n" +
	"Merge branch 'feature/idle-detection'\n" +
	"Alice Example\n" +
	"alice@example.com\n" +
	"1700200000\n" +
	"1700200100\n" +
	"1111111111111111111111111111111111111111 2222222222222222222222222222222222222222\x00\n" +
	"1111111111111111111111111111111111111111\n" +
	"1111111\n" +
	"Add idle detection\n" +
	"Bob Builder\n" +
	"bob@example.com\n" +
	"1700100000\n" +
	"1700100000\n" +
	"0000000000000000000000000000000000000000\x00\n" +
	"abcdefabcdefabcdefabcdefabcdefabcdefabcd\n" +
	"abcdefa\n" +
	"Initial commit\n" +
	"Alice Example\n" +
	"alice@example.com\n" +
	"1700000000\n" +
	"1700000000\n" +
	"\x00\n"

func TestParseFileLog(t *testing.T) {
	commits := parseFileLog(fileLogSample)

	if len(commits) != 3 {
		t.Fatalf("got %d commits, want 3", len(commits))
	}

	merge := commits[0]
	if merge.Hash != "9a8b7c6d5e4f3a2b1c0d9e8f7a6b5c4d3e2f1a0b" {
		t.Errorf("hash = %q", merge.Hash)
	}
	if merge.ShortHash != "9a8b7c6" {
		t.Errorf("short hash = %q, want %q", merge.ShortHash, "9a8b7c6")
	}
	if merge.Subject != "Merge branch 'feature/idle-detection'" {
		t.Errorf("subject = %q", merge.Subject)
	}
	if merge.Author != "Alice Example" || merge.AuthorEmail != "alice@example.com" {
		t.Errorf("author = %q <%q>", merge.Author, merge.AuthorEmail)
	}
	if !merge.AuthorTime.Equal(time.Unix(1700200000, 0)) {
		t.Errorf("author time = %v", merge.AuthorTime)
	}
	if !merge.CommitTime.Equal(time.Unix(1700200100, 0)) {
		t.Errorf("commit time = %v", merge.CommitTime)
	}
	if len(merge.Parents) != 2 {
		t.Fatalf("merge has %d parents, want 2", len(merge.Parents))
	}

	if len(commits[1].Parents) != 1 {
		t.Errorf("commit 2 has %d parents, want 1", len(commits[1].Parents))
	}

	// Root commit has no parents.
	root := commits[2]
	if root.Subject != "Initial commit" {
		t.Errorf("root subject = %q", root.Subject)
	}
	if len(root.Parents) != 0 {
		t.Errorf("root has %d parents, want 0", len(root.Parents))
	}
}

func TestParseFileLog_Empty(t *testing.T) {
	if commits := parseFileLog(""); len(commits) != 0 {
		t.Errorf("got %d commits for empty output, want 0", len(commits))
	}
}
