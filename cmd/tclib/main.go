package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/platinummonkey/tclib/pkg/cli"
)

func main() {
	// Create root command
	rootCmd := cli.NewRootCommand()

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if errors.Is(err, cli.ErrSnapshotsDiffer) {
			os.Exit(1)
		}
		if errors.Is(err, cli.ErrLintFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
