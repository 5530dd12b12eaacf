package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/platinummonkey/tclib/pkg/library"
	"github.com/platinummonkey/tclib/pkg/structures"
)

func newIndexCommand() *Command {
	cmd := &Command{
		Name:        "index",
		Description: "Load a snapshot and print per-category counts",
		Flags:       flag.NewFlagSet("index", flag.ContinueOnError),
		Run:         runIndex,
	}
	addLibraryFlags(cmd.Flags, true)
	cmd.Flags.String("format", "text", "Output format: text, json")
	return cmd
}

// indexResult is the json output of the index command
type indexResult struct {
	Snapshot string                           `json:"snapshot"`
	TakenAt  time.Time                        `json:"taken_at"`
	Roots    []string                         `json:"roots"`
	Counts   map[structures.Category]int      `json:"counts"`
	Unstable map[structures.Category][]string `json:"unstable,omitempty"`
}

func runIndex(args []string) (err error) {
	flags := flag.NewFlagSet("index", flag.ContinueOnError)
	libFlags := addLibraryFlags(flags, true)
	format := flags.String("format", "text", "Output format: text, json")

	if err := flags.Parse(args); err != nil {
		return err
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

	lib, err := env.load(ctx, nil)
	if err != nil {
		return describeLoadError(err)
	}

	if *format == "json" {
		err = outputIndexJSON(lib)
	} else {
		outputIndexText(lib)
	}
	return err
}

func outputIndexJSON(lib *library.Library) error {
	result := indexResult{
		Snapshot: lib.ID(),
		TakenAt:  lib.TakenAt(),
		Roots:    lib.Roots(),
		Counts:   make(map[structures.Category]int),
		Unstable: make(map[structures.Category][]string),
	}
	for _, category := range structures.Categories() {
		result.Counts[category] = lib.Count(category)
		if unstable := lib.Unstable(category); len(unstable) > 0 {
			result.Unstable[category] = unstable
		}
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputIndexText(lib *library.Library) {
	fmt.Fprintf(stdout, "Snapshot %s\n", lib.ID())
	for _, category := range structures.Categories() {
		fmt.Fprintf(stdout, "  %-15s %d\n", category, lib.Count(category))
		for _, id := range lib.Unstable(category) {
			fmt.Fprintf(stdout, "    unstable: %s\n", id)
		}
	}
}
