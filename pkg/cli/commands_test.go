package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/tclib/pkg/config"
	"github.com/platinummonkey/tclib/pkg/library"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// quietEnv keeps command logs out of test output
func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TCLIB_LOG_LEVEL", "error")
	t.Setenv("TCLIB_OTEL_ENABLED", "false")
	t.Setenv("TCLIB_METRICS_FILE", "")
	t.Setenv("TCLIB_ROOTS", "")
	t.Setenv("TCLIB_WORKERS", "")
	t.Setenv("TCLIB_STRICT", "")
}

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeDoc(t, dir, "root.req.yaml", "name: REQ-ROOT\npriority: high\n")
	writeDoc(t, dir, "auth/login.req.yaml", "name: REQ-LOGIN\nparent: REQ-ROOT\n")
	writeDoc(t, dir, "tests/login.tc.yaml", "name: TC-LOGIN\nverifies: [REQ-LOGIN]\n")
	return dir
}

func TestRunIndex_Text(t *testing.T) {
	quietEnv(t)
	out := captureStdout(t)
	dir := writeTree(t)

	require.NoError(t, runIndex([]string{"--root", dir}))

	output := out.String()
	assert.Contains(t, output, "Snapshot ")
	assert.Regexp(t, `requirements\s+2`, output)
	assert.Regexp(t, `testcases\s+1`, output)
	assert.Regexp(t, `testplans\s+0`, output)
}

func TestDescribeLoadError(t *testing.T) {
	docErr := &library.DocfilesError{
		Category:    "requirements",
		Documents:   []string{"a.req.yaml", "b.req.yaml"},
		Diagnostics: map[string]string{"a.req.yaml": "missing reference requirement X"},
	}

	err := describeLoadError(fmt.Errorf("wrapped: %w", docErr))
	assert.Contains(t, err.Error(), "\n  a.req.yaml: missing reference requirement X")
	assert.Contains(t, err.Error(), "\n  b.req.yaml: unresolved")
	var target *library.DocfilesError
	assert.True(t, errors.As(err, &target))

	plain := errors.New("boom")
	assert.Same(t, plain, describeLoadError(plain))
}

func TestRunIndex_FailedLoadStillWritesMetrics(t *testing.T) {
	quietEnv(t)
	captureStdout(t)
	dir := t.TempDir()
	writeDoc(t, dir, "orphan.req.yaml", "name: ORPHAN\nparent: MISSING\n")
	metricsFile := filepath.Join(t.TempDir(), "tclib.prom")

	err := runIndex([]string{"--root", dir, "--metrics-file", metricsFile})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing reference")

	metrics, readErr := os.ReadFile(metricsFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(metrics), `tclib_load_failures_total{category="requirements",kind="unresolved"} 1`)
}

func TestRunDiff_FailedLoadStillWritesMetrics(t *testing.T) {
	quietEnv(t)
	captureStdout(t)
	dir := t.TempDir()
	writeDoc(t, dir, "a.req.yaml", "name: DUP\n")
	writeDoc(t, dir, "b.req.yaml", "name: DUP\n")
	metricsFile := filepath.Join(t.TempDir(), "tclib.prom")

	err := runDiff([]string{"--new", dir, "--metrics-file", metricsFile})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load new snapshot")

	metrics, readErr := os.ReadFile(metricsFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(metrics), `tclib_load_failures_total{category="requirements",kind="collision"} 1`)
}

func TestRunIndex_JSONAndMetricsFile(t *testing.T) {
	quietEnv(t)
	out := captureStdout(t)
	dir := writeTree(t)
	metricsFile := filepath.Join(t.TempDir(), "tclib.prom")

	require.NoError(t, runIndex([]string{"--root", dir, "--workers", "3", "--format", "json", "--metrics-file", metricsFile}))

	var result indexResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.NotEmpty(t, result.Snapshot)
	assert.Equal(t, []string{dir}, result.Roots)
	assert.Equal(t, 2, result.Counts["requirements"])
	assert.Equal(t, 1, result.Counts["testcases"])
	assert.Empty(t, result.Unstable)

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `tclib_records{category="requirements"} 2`)
}

func TestRunIndex_ReportsUnresolvedDocuments(t *testing.T) {
	quietEnv(t)
	captureStdout(t)
	dir := writeTree(t)
	orphan := writeDoc(t, dir, "orphan.req.yaml", "name: REQ-ORPHAN\nparent: REQ-NOWHERE\n")

	err := runIndex([]string{"--root", dir})

	var docErr *library.DocfilesError
	require.ErrorAs(t, err, &docErr)
	assert.Contains(t, err.Error(), orphan+": missing reference requirement REQ-NOWHERE")
}

func TestRunIndex_InvalidFlags(t *testing.T) {
	quietEnv(t)
	captureStdout(t)

	assert.ErrorContains(t, runIndex([]string{"--format", "yaml"}), "invalid format")
	assert.ErrorContains(t, runIndex([]string{"--root", t.TempDir(), "--workers", "0"}), "workers must be at least 1")
}

func TestRunDiff(t *testing.T) {
	quietEnv(t)
	oldDir := writeTree(t)
	newDir := writeTree(t)
	writeDoc(t, newDir, "root.req.yaml", "name: REQ-ROOT\npriority: low\n")
	writeDoc(t, newDir, "extra.req.yaml", "name: REQ-EXTRA\n")
	require.NoError(t, os.Remove(filepath.Join(newDir, "tests", "login.tc.yaml")))

	t.Run("text", func(t *testing.T) {
		out := captureStdout(t)
		require.NoError(t, runDiff([]string{"--old", oldDir, "--new", newDir}))

		output := out.String()
		assert.Contains(t, output, "requirements: 0 removed, 1 added, 2 changed, 0 unchanged")
		assert.Contains(t, output, "  + REQ-EXTRA")
		assert.Contains(t, output, "  ~ REQ-LOGIN")
		assert.Contains(t, output, "  ~ REQ-ROOT")
		assert.Contains(t, output, "testcases: 1 removed, 0 added, 0 changed, 0 unchanged")
		assert.Contains(t, output, "  - TC-LOGIN")
	})

	t.Run("json with exit code", func(t *testing.T) {
		out := captureStdout(t)
		err := runDiff([]string{"--old", oldDir, "--new", newDir, "--format", "json", "--exit-code"})
		assert.True(t, errors.Is(err, ErrSnapshotsDiffer))

		var report map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Contains(t, report, "categories")
	})

	t.Run("identical trees", func(t *testing.T) {
		out := captureStdout(t)
		require.NoError(t, runDiff([]string{"--old", oldDir, "--new", oldDir, "--exit-code"}))
		assert.Contains(t, out.String(), "requirements: 0 removed, 0 added, 0 changed, 2 unchanged")
	})

	t.Run("empty baseline", func(t *testing.T) {
		out := captureStdout(t)
		require.NoError(t, runDiff([]string{"--new", oldDir}))
		assert.Contains(t, out.String(), "requirements: 0 removed, 2 added, 0 changed, 0 unchanged")
	})

	t.Run("missing new", func(t *testing.T) {
		assert.ErrorContains(t, runDiff([]string{"--old", oldDir}), "--new is required")
	})
}

func TestRunGraph(t *testing.T) {
	quietEnv(t)
	dir := writeTree(t)

	t.Run("dot", func(t *testing.T) {
		out := captureStdout(t)
		require.NoError(t, runGraph([]string{"--root", dir}))
		output := out.String()
		assert.True(t, strings.HasPrefix(output, "digraph references {"))
		assert.Contains(t, output, `"testcases/TC-LOGIN" -> "requirements/REQ-LOGIN";`)
	})

	t.Run("json focus", func(t *testing.T) {
		out := captureStdout(t)
		require.NoError(t, runGraph([]string{"--root", dir, "--format", "json", "--focus", "REQ-LOGIN"}))

		var graph struct {
			Nodes []struct {
				Data struct {
					ID   string `json:"id"`
					Type string `json:"type"`
				} `json:"data"`
			} `json:"nodes"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &graph))
		types := map[string]string{}
		for _, node := range graph.Nodes {
			types[node.Data.ID] = node.Data.Type
		}
		assert.Equal(t, map[string]string{
			"requirements/REQ-LOGIN": "current",
			"requirements/REQ-ROOT":  "declared",
			"testcases/TC-LOGIN":     "declared",
		}, types)
	})

	t.Run("unknown focus", func(t *testing.T) {
		captureStdout(t)
		assert.ErrorContains(t, runGraph([]string{"--root", dir, "--focus", "NOPE"}), "unknown record: NOPE")
	})
}

func TestFocusKey(t *testing.T) {
	keys := map[string]bool{"requirements/X": true, "testcases/X": true, "testcases/T": true}
	exists := func(key string) bool { return keys[key] }

	key, err := focusKey("T", exists)
	require.NoError(t, err)
	assert.Equal(t, "testcases/T", key)

	key, err = focusKey("requirements/X", exists)
	require.NoError(t, err)
	assert.Equal(t, "requirements/X", key)

	_, err = focusKey("X", exists)
	assert.ErrorContains(t, err, "ambiguous record X")

	key, err = focusKey("", exists)
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestLibraryFlags_OnlyExplicitFlagsOverride(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := addLibraryFlags(fs, true)
	require.NoError(t, fs.Parse([]string{"--root", "a", "--root", "b", "--strict"}))

	cfg := &config.Config{Library: config.LibraryConfig{
		Roots:              []string{"."},
		RequirementPattern: "*.r.yaml",
		TestCasePattern:    "*.t.yaml",
		Workers:            6,
	}}
	require.NoError(t, f.apply(cfg))

	assert.Equal(t, []string{"a", "b"}, cfg.Library.Roots)
	assert.True(t, cfg.Library.Strict)
	assert.Equal(t, 6, cfg.Library.Workers)
	assert.Equal(t, "*.r.yaml", cfg.Library.RequirementPattern)
}
