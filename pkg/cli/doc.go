// Package cli provides the tclib command-line interface.
//
// # Overview
//
// This package implements the `tclib` tool that loads requirement and test
// case documents, reports on a snapshot and compares two document trees.
// Configuration comes from TCLIB_* environment variables (see pkg/config);
// flags given on the command line take precedence.
//
// # Commands
//
// index: Load a snapshot and print per-category counts
//
//	tclib index --root ./requirements --root ./tests --format json
//
// diff: Compare two trees, or a tree against an empty baseline
//
//	tclib diff --old ./main-checkout --new . --exit-code
//
// graph: Render the reference graph in Graphviz DOT or Cytoscape.js JSON
//
//	tclib graph --root . --focus REQ-LOGIN | dot -Tsvg > login.svg
//
// lint: Check documentation and coverage, with GitHub annotations in CI
//
//	tclib lint --root . --format github --fail-on warning
//
// watch: Reload on document changes and print what changed
//
//	tclib watch --root . --debounce 1s --schedule "*/30 * * * *"
//
// # Exit Codes
//
// diff --exit-code exits with status 1 when the snapshots differ, and lint
// exits with status 1 when a violation reaches --fail-on. Any other failure
// exits with status 2.
package cli
