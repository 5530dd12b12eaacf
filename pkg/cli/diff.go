package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"

	"github.com/platinummonkey/tclib/pkg/diff"
	"github.com/platinummonkey/tclib/pkg/structures"
)

// ErrSnapshotsDiffer is returned by diff --exit-code when records changed
var ErrSnapshotsDiffer = errors.New("snapshots differ")

func newDiffCommand() *Command {
	cmd := &Command{
		Name:        "diff",
		Description: "Compare the records of two document trees",
		Flags:       flag.NewFlagSet("diff", flag.ContinueOnError),
		Run:         runDiff,
	}
	addLibraryFlags(cmd.Flags, false)
	cmd.Flags.Var(&stringList{}, "old", "Root of the old tree (repeatable, omit for an empty baseline)")
	cmd.Flags.Var(&stringList{}, "new", "Root of the new tree (repeatable, required)")
	cmd.Flags.String("format", "text", "Output format: text, json")
	cmd.Flags.Bool("exit-code", false, "Return an error when the snapshots differ")
	return cmd
}

func runDiff(args []string) (err error) {
	flags := flag.NewFlagSet("diff", flag.ContinueOnError)
	libFlags := addLibraryFlags(flags, false)
	var oldRoots, newRoots stringList
	flags.Var(&oldRoots, "old", "Root of the old tree (repeatable, omit for an empty baseline)")
	flags.Var(&newRoots, "new", "Root of the new tree (repeatable, required)")
	format := flags.String("format", "text", "Output format: text, json")
	exitCode := flags.Bool("exit-code", false, "Return an error when the snapshots differ")

	if err := flags.Parse(args); err != nil {
		return err
	}

	// Validate required flags
	if len(newRoots) == 0 {
		return fmt.Errorf("--new is required")
	}
	if *format != "text" && *format != "json" {
		return fmt.Errorf("invalid format: %s (must be text or json)", *format)
	}

	ctx := context.Background()
	env, err := newEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.closeWith(ctx, &err)
	if err := libFlags.apply(env.cfg); err != nil {
		return err
	}

	var from diff.Snapshot
	if len(oldRoots) > 0 {
		oldLib, err := env.load(ctx, oldRoots)
		if err != nil {
			return fmt.Errorf("failed to load old snapshot: %w", describeLoadError(err))
		}
		from = oldLib
	}
	newLib, err := env.load(ctx, newRoots)
	if err != nil {
		return fmt.Errorf("failed to load new snapshot: %w", describeLoadError(err))
	}

	report := diff.NewAnalyzer(env.log, env.metrics).Compare(ctx, from, newLib)
	if err := report.Validate(from, newLib); err != nil {
		return fmt.Errorf("inconsistent diff report: %w", err)
	}

	if *format == "json" {
		err = outputDiffJSON(report)
	} else {
		outputDiffText(report)
	}
	if err != nil {
		return err
	}

	if *exitCode && !report.Empty() {
		return ErrSnapshotsDiffer
	}
	return nil
}

func outputDiffJSON(report *diff.Report) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

var diffMarkers = map[diff.Classification]string{
	diff.Removed: "-",
	diff.Added:   "+",
	diff.Changed: "~",
}

func outputDiffText(report *diff.Report) {
	summary := report.Summary()
	for _, category := range structures.Categories() {
		counts := summary[category]
		fmt.Fprintf(stdout, "%s: %d removed, %d added, %d changed, %d unchanged\n",
			category, counts.Removed, counts.Added, counts.Changed, counts.Unchanged)

		c := report.Category(category)
		for _, classification := range []diff.Classification{diff.Removed, diff.Added, diff.Changed} {
			for _, id := range c.IDs(classification) {
				fmt.Fprintf(stdout, "  %s %s\n", diffMarkers[classification], id)
			}
		}
	}
}
