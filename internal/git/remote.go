package git

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Remote is a configured git remote.
type Remote struct {
	// Name is the remote name (e.g. "origin").
	Name string

	// FetchURL is the URL used for fetching.
	FetchURL string

	// PushURL is the URL used for pushing.
	PushURL string
}

// Remotes returns all configured remotes, sorted by name.
func (r *Repository) Remotes(ctx context.Context) ([]Remote, error) {
	output, err := r.git(ctx, "remote", "-v")
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}

	// Each remote appears twice: "name\turl (fetch)" and "name\turl (push)".
	byName := make(map[string]*Remote)
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		remote, ok := byName[fields[0]]
		if !ok {
			remote = &Remote{Name: fields[0]}
			byName[fields[0]] = remote
		}

		switch strings.Trim(fields[2], "()") {
		case "fetch":
			remote.FetchURL = fields[1]
		case "push":
			remote.PushURL = fields[1]
		}
	}

	remotes := make([]Remote, 0, len(byName))
	for _, remote := range byName {
		remotes = append(remotes, *remote)
	}
	sort.Slice(remotes, func(i, j int) bool {
		return remotes[i].Name < remotes[j].Name
	})

	return remotes, nil
}
