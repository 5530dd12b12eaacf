package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/tclib/pkg/diff"
	"github.com/platinummonkey/tclib/pkg/library"
	"github.com/platinummonkey/tclib/pkg/observability"
	"github.com/platinummonkey/tclib/pkg/structures"
)

func newWatchCommand() *Command {
	cmd := &Command{
		Name:        "watch",
		Description: "Reload on document changes and print what changed",
		Flags:       flag.NewFlagSet("watch", flag.ContinueOnError),
		Run:         runWatch,
	}
	addLibraryFlags(cmd.Flags, true)
	cmd.Flags.String("schedule", "", "Cron expression for additional periodic reloads")
	cmd.Flags.Duration("debounce", 500*time.Millisecond, "Quiet period after a file event before reloading")
	return cmd
}

func runWatch(args []string) (err error) {
	flags := flag.NewFlagSet("watch", flag.ContinueOnError)
	libFlags := addLibraryFlags(flags, true)
	schedule := flags.String("schedule", "", "Cron expression for additional periodic reloads")
	debounce := flags.Duration("debounce", 500*time.Millisecond, "Quiet period after a file event before reloading")

	if err := flags.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newEnvironment(ctx)
	if err != nil {
		return err
	}
	// The signal context is done by the time the deferred close runs.
	defer env.closeWith(context.Background(), &err)

	flags.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "schedule":
			env.cfg.Watch.Schedule = *schedule
		case "debounce":
			env.cfg.Watch.Debounce = *debounce
		}
	})
	if err := libFlags.apply(env.cfg); err != nil {
		return err
	}

	return watch(ctx, env)
}

// watcher keeps the latest snapshot and reports differences on reload
type watcher struct {
	env      *environment
	analyzer *diff.Analyzer
	current  *library.Library
}

// watch runs until ctx is cancelled
func watch(ctx context.Context, env *environment) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	for _, root := range env.cfg.Library.Roots {
		if err := setupWatcher(fsw, root); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				env.log.Warnf("Document root does not exist: %s", root)
				continue
			}
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}

	w := &watcher{env: env, analyzer: diff.NewAnalyzer(env.log, env.metrics)}
	lib, err := env.load(ctx, nil)
	if err != nil {
		return describeLoadError(err)
	}
	w.current = lib
	fmt.Fprintf(stdout, "Watching %d requirements and %d test cases (snapshot %s)\n",
		lib.Count(structures.Requirements), lib.Count(structures.TestCases), lib.ID())

	trigger := make(chan struct{}, 1)
	if schedule := env.cfg.Watch.Schedule; schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(schedule, func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return fmt.Errorf("invalid schedule %q: %w", schedule, err)
		}
		c.Start()
		defer c.Stop()
		env.log.Infof("Scheduled reloads: %s", schedule)
	}

	debounce := time.NewTimer(env.cfg.Watch.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			// Also watch new directories
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := setupWatcher(fsw, event.Name); err != nil {
						env.log.WithError(err).Warnf("Failed to watch new directory %s", event.Name)
					}
				}
			}
			if w.relevant(event) {
				env.log.Debugf("Document event: %s", event)
				debounce.Reset(env.cfg.Watch.Debounce)
			}

		case <-debounce.C:
			w.reload(ctx)

		case <-trigger:
			w.reload(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			env.log.WithError(err).Warn("Watcher error")
		}
	}
}

// relevant reports whether an event can change the loaded documents
func (w *watcher) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	for _, pattern := range []string{w.env.cfg.Library.RequirementPattern, w.env.cfg.Library.TestCasePattern} {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// reload loads a new snapshot and prints its differences. A failed or
// panicking reload keeps the previous snapshot.
func (w *watcher) reload(ctx context.Context) {
	defer observability.RecoverPanic(w.env.log, "watch reload")
	log := observability.LoggerWithTraceContext(ctx, w.env.log)

	// Cache keys cannot tell apart two edits with the same size and mtime.
	w.env.cache.Purge()

	lib, err := w.env.load(ctx, nil)
	if err != nil {
		log.WithError(describeLoadError(err)).Error("Reload failed, keeping previous snapshot")
		return
	}

	report := w.analyzer.Compare(ctx, w.current, lib)
	w.current = lib
	if report.Empty() {
		log.Debug("Reload found no changes")
		return
	}

	fmt.Fprintf(stdout, "Snapshot %s -> %s\n", report.FromSnapshot, report.ToSnapshot)
	outputDiffText(report)
}

// setupWatcher recursively adds all directories to the watcher
func setupWatcher(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
