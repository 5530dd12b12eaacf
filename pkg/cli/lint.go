package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/platinummonkey/tclib/pkg/library"
	"github.com/platinummonkey/tclib/pkg/linter"
	"github.com/platinummonkey/tclib/pkg/linter/rules"
)

// ErrLintFailed is returned when violations reach the --fail-on severity
var ErrLintFailed = errors.New("lint failed")

func newLintCommand() *Command {
	cmd := &Command{
		Name:        "lint",
		Description: "Check requirements and test cases for documentation and coverage gaps",
		Flags:       flag.NewFlagSet("lint", flag.ContinueOnError),
		Run:         runLint,
	}
	addLibraryFlags(cmd.Flags, true)
	return cmd
}

func runLint(args []string) (err error) {
	flags := flag.NewFlagSet("lint", flag.ContinueOnError)
	libFlags := addLibraryFlags(flags, true)
	configFile := flags.String("config", "", "Path to lint config file (default tclib-lint.yaml in the first root)")
	format := flags.String("format", "text", "Output format: text, json, github")
	failOn := flags.String("fail-on", "error", "Lowest severity that fails the run: error, warning, info, none")
	rulesOnly := flags.Bool("rules", false, "List available rules and exit")
	writeConfig := flags.String("write-config", "", "Write the effective lint config, listing every rule, to this file and exit")

	if err := flags.Parse(args); err != nil {
		return err
	}
	switch *format {
	case "text", "json", "github":
	default:
		return fmt.Errorf("invalid format: %s (must be text, json, or github)", *format)
	}
	switch linter.Severity(*failOn) {
	case linter.SeverityError, linter.SeverityWarning, linter.SeverityInfo, "none":
	default:
		return fmt.Errorf("invalid fail-on: %s (must be error, warning, info, or none)", *failOn)
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

	var lintConfig *linter.Config
	if *configFile != "" {
		lintConfig, err = linter.LoadConfig(*configFile)
	} else {
		lintConfig, err = linter.LoadConfigFromDir(env.cfg.Library.Roots[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load lint config: %w", err)
	}

	engine := linter.NewLintEngine(lintConfig)
	rules.RegisterDefaultRules(engine.Registry())

	if *rulesOnly {
		lintListRules(engine)
		return nil
	}
	if *writeConfig != "" {
		return lintWriteConfig(engine, lintConfig, *writeConfig)
	}

	lib, err := env.load(ctx, nil)
	if err != nil {
		return describeLoadError(err)
	}

	result := engine.Lint(lib)
	summary := engine.GenerateSummary(result)
	env.log.WithField("snapshot", lib.ID()).
		WithField("violations", summary.TotalViolations).
		Debug("Linted snapshot")

	switch *format {
	case "json":
		err = lintOutputJSON(lib, result, summary)
	case "github":
		lintOutputGitHub(lib, result)
	default:
		lintOutputText(result, summary)
	}
	if err != nil {
		return err
	}

	if *failOn != "none" && result.HasSeverity(linter.Severity(*failOn)) {
		return fmt.Errorf("%w: %d errors, %d warnings, %d infos",
			ErrLintFailed, summary.Errors, summary.Warnings, summary.Infos)
	}
	return nil
}

func lintListRules(engine *linter.LintEngine) {
	allRules := engine.Registry().GetAllRules()

	fmt.Fprintf(stdout, "Available lint rules (%d):\n\n", len(allRules))

	for _, cat := range []linter.Category{
		linter.CategoryDocumentation,
		linter.CategoryCoverage,
		linter.CategoryStructure,
	} {
		catRules := engine.Registry().GetRulesByCategory(cat)
		if len(catRules) == 0 {
			continue
		}

		catName := string(cat)
		fmt.Fprintf(stdout, "%s%s Rules:\n", strings.ToUpper(catName[:1]), catName[1:])
		for _, rule := range catRules {
			fmt.Fprintf(stdout, "  - %-25s [%s]\n    %s\n", rule.Name(), rule.Severity(), rule.Description())
		}
		fmt.Fprintln(stdout)
	}
}

// lintWriteConfig saves config with an entry for every registered rule, so
// the file documents the defaults it does not override
func lintWriteConfig(engine *linter.LintEngine, config *linter.Config, path string) error {
	for _, rule := range engine.Registry().GetAllRules() {
		rc := config.Rules[rule.Name()]
		if rc.Enabled == nil {
			enabled := true
			rc.Enabled = &enabled
		}
		if rc.Severity == "" {
			rc.Severity = rule.Severity()
		}
		config.Rules[rule.Name()] = rc
	}

	if err := linter.SaveConfig(config, path); err != nil {
		return fmt.Errorf("failed to write lint config: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote lint config to %s\n", path)
	return nil
}

func lintOutputText(result linter.LintResult, summary linter.Summary) {
	for _, v := range result.Violations {
		location := v.Document
		if location == "" {
			location = "(snapshot)"
		}
		fmt.Fprintf(stdout, "%s: [%s] %s (%s)\n", location, v.Severity, v.Message, v.Rule)
	}

	fmt.Fprintf(stdout, "\nSummary:\n")
	fmt.Fprintf(stdout, "  Records:     %d\n", summary.TotalRecords)
	fmt.Fprintf(stdout, "  Violations:  %d\n", summary.TotalViolations)
	fmt.Fprintf(stdout, "  Errors:      %d\n", summary.Errors)
	fmt.Fprintf(stdout, "  Warnings:    %d\n", summary.Warnings)
	fmt.Fprintf(stdout, "  Infos:       %d\n", summary.Infos)
	fmt.Fprintf(stdout, "  Coverage:    %.1f%% (%d/%d requirements)\n",
		result.Metrics.RequirementCoverage, result.Metrics.CoveredRequirements, result.Metrics.Requirements)
}

func lintOutputJSON(lib *library.Library, result linter.LintResult, summary linter.Summary) error {
	output := struct {
		Snapshot   string             `json:"snapshot"`
		Violations []linter.Violation `json:"violations"`
		Metrics    linter.Metrics     `json:"metrics"`
		Summary    linter.Summary     `json:"summary"`
	}{
		Snapshot:   lib.ID(),
		Violations: result.Violations,
		Metrics:    result.Metrics,
		Summary:    summary,
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// lintOutputGitHub prints GitHub Actions annotations:
// ::error file={name}::{message}
func lintOutputGitHub(lib *library.Library, result linter.LintResult) {
	for _, v := range result.Violations {
		level := "error"
		if v.Severity == linter.SeverityWarning {
			level = "warning"
		} else if v.Severity == linter.SeverityInfo {
			level = "notice"
		}

		if v.Document == "" {
			fmt.Fprintf(stdout, "::%s::[%s] %s\n", level, v.Rule, v.Message)
			continue
		}
		fmt.Fprintf(stdout, "::%s file=%s::[%s] %s\n", level, githubPath(lib, v), v.Rule, v.Message)
	}
}

// githubPath returns the document path annotations should point at. Records
// keep their root-relative path; the provenance is the absolute file.
func githubPath(lib *library.Library, v linter.Violation) string {
	if rec, ok := lib.Record(v.Record.Category, v.Record.ID); ok {
		return rec.Provenance()
	}
	return v.Document
}
