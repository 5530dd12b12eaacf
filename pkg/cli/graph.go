package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/platinummonkey/tclib/pkg/structures"
)

func newGraphCommand() *Command {
	cmd := &Command{
		Name:        "graph",
		Description: "Render the reference graph of a snapshot",
		Flags:       flag.NewFlagSet("graph", flag.ContinueOnError),
		Run:         runGraph,
	}
	addLibraryFlags(cmd.Flags, true)
	cmd.Flags.String("focus", "", "Only render records connected to this one (category/id or id)")
	cmd.Flags.String("format", "dot", "Output format: dot, json")
	return cmd
}

func runGraph(args []string) (err error) {
	flags := flag.NewFlagSet("graph", flag.ContinueOnError)
	libFlags := addLibraryFlags(flags, true)
	focus := flags.String("focus", "", "Only render records connected to this one (category/id or id)")
	format := flags.String("format", "dot", "Output format: dot, json")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *format != "dot" && *format != "json" {
		return fmt.Errorf("invalid format: %s (must be dot or json)", *format)
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

	graph := lib.Graph()
	key, err := focusKey(*focus, graph.HasNode)
	if err != nil {
		return err
	}

	if *format == "json" {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(graph.Cytoscape(key))
	} else {
		err = graph.WriteDOT(stdout, key)
	}
	return err
}

// focusKey resolves a --focus value to a graph key. A bare id is looked up
// in every category and must be unambiguous.
func focusKey(focus string, exists func(string) bool) (string, error) {
	if focus == "" {
		return "", nil
	}
	if exists(focus) {
		return focus, nil
	}

	var matches []string
	for _, category := range structures.Categories() {
		key := structures.Reference{Category: category, ID: focus}.Key()
		if exists(key) {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown record: %s", focus)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous record %s: use one of %s", focus, strings.Join(matches, ", "))
	}
}
