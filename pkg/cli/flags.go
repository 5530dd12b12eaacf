package cli

import (
	"flag"

	"github.com/platinummonkey/tclib/pkg/config"
)

// libraryFlags are the loading flags shared by every command. Only flags
// given on the command line override the environment configuration.
type libraryFlags struct {
	fs          *flag.FlagSet
	roots       stringList
	workers     int
	strict      bool
	reqPattern  string
	tcPattern   string
	metricsFile string
}

func addLibraryFlags(fs *flag.FlagSet, withRoots bool) *libraryFlags {
	f := &libraryFlags{fs: fs}
	if withRoots {
		fs.Var(&f.roots, "root", "Directory to search for documents (repeatable, default TCLIB_ROOTS)")
	}
	fs.IntVar(&f.workers, "workers", 1, "Documents parsed concurrently per load pass")
	fs.BoolVar(&f.strict, "strict", false, "Fail when records do not stabilize")
	fs.StringVar(&f.reqPattern, "requirement-pattern", "*.req.yaml", "File name pattern of requirement documents")
	fs.StringVar(&f.tcPattern, "testcase-pattern", "*.tc.yaml", "File name pattern of test case documents")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	return f
}

// apply copies explicitly set flags into cfg and validates the result
func (f *libraryFlags) apply(cfg *config.Config) error {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "root":
			cfg.Library.Roots = append([]string(nil), f.roots...)
		case "workers":
			cfg.Library.Workers = f.workers
		case "strict":
			cfg.Library.Strict = f.strict
		case "requirement-pattern":
			cfg.Library.RequirementPattern = f.reqPattern
		case "testcase-pattern":
			cfg.Library.TestCasePattern = f.tcPattern
		case "metrics-file":
			cfg.Observability.MetricsFile = f.metricsFile
		}
	})
	return cfg.Validate()
}
