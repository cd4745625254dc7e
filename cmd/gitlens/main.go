// Package main is the entry point for the gitlens command, a terminal
// front end over the document tracker: it annotates a file with blame,
// working-tree diff or commit history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/korigod/gitlens/internal/config"
	"github.com/korigod/gitlens/internal/editor/memory"
	"github.com/korigod/gitlens/internal/event"
	"github.com/korigod/gitlens/internal/git"
	"github.com/korigod/gitlens/internal/tracker"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath       string
		ignoreWhitespace bool
		maxCount         int
		showVersion      bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&ignoreWhitespace, "w", false, "Ignore whitespace when attributing lines")
	flag.IntVar(&maxCount, "n", 20, "Maximum number of commits for log")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gitlens - source control annotations for files\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gitlens [options] <blame|diff|log> <file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gitlens blame main.go       Annotate each line with its commit\n")
		fmt.Fprintf(os.Stderr, "  gitlens diff main.go        Show unsaved working-tree changes\n")
		fmt.Fprintf(os.Stderr, "  gitlens -n 5 log main.go    Show the last 5 commits touching the file\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("gitlens %s (%s)\n", version, commit)
		return 0
	}

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		return 2
	}
	command, file := args[0], args[1]

	bus := event.NewBus()
	host := memory.NewHost(bus)

	cfg := config.NewStore()
	cfgSub := cfg.Bind(bus)
	defer cfgSub.Unsubscribe()
	if err := loadConfig(cfg, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if ignoreWhitespace {
		cfg.Set(config.SettingBlameIgnoreWhitespace, true)
	}

	tr := tracker.New(host, cfg, git.NewService(), bus)
	defer tr.Close()

	ctx := context.Background()
	td, err := tr.Add(ctx, file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	switch command {
	case "blame":
		err = printBlame(ctx, td)
	case "diff":
		err = printDiff(ctx, td)
	case "log":
		err = printLog(ctx, td, maxCount)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", command)
		flag.Usage()
		return 2
	}

	if err != nil {
		if errors.Is(err, tracker.ErrNotBlameable) {
			fmt.Fprintf(os.Stderr, "Error: %s is not tracked by source control\n", file)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig loads settings from an explicit path, or from the default
// location if one exists. A missing default file is not an error.
func loadConfig(cfg *config.Store, path string) error {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".config", "gitlens", "gitlens.toml")
	}

	values, err := config.LoadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	cfg.Load(values, true)
	return nil
}

func printBlame(ctx context.Context, td *tracker.TrackedDocument) error {
	blame, err := td.Blame(ctx)
	if err != nil {
		return err
	}

	for _, line := range blame.Lines {
		hash := line.Hash
		if len(hash) > 8 {
			hash = hash[:8]
		}
		fmt.Printf("%s %-20s %s %4d) %s\n",
			hash, line.Author, line.AuthorTime.Format("2006-01-02"), line.LineNo, line.Content)
	}
	return nil
}

func printDiff(ctx context.Context, td *tracker.TrackedDocument) error {
	diff, err := td.Diff(ctx)
	if err != nil {
		return err
	}

	if !diff.HasChanges() {
		fmt.Println("no changes")
		return nil
	}
	for _, hunk := range diff.Hunks {
		fmt.Println(hunk.Header)
		for _, line := range hunk.Lines {
			fmt.Println(line)
		}
	}
	return nil
}

func printLog(ctx context.Context, td *tracker.TrackedDocument, maxCount int) error {
	log, err := td.Log(ctx, maxCount)
	if err != nil {
		return err
	}

	for _, c := range log {
		fmt.Printf("%s %s %s <%s> %s\n",
			c.ShortHash, c.CommitTime.Format("2006-01-02"), c.Author, c.AuthorEmail, c.Subject)
	}
	return nil
}
