package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/platinummonkey/tclib/pkg/config"
	"github.com/platinummonkey/tclib/pkg/library"
	"github.com/platinummonkey/tclib/pkg/observability"
	"github.com/platinummonkey/tclib/pkg/structures"
)

// environment bundles the configuration and ambient services shared by
// every command
type environment struct {
	cfg     *config.Config
	log     *logrus.Logger
	metrics *observability.Metrics
	cache   *structures.DocumentCache
	tp      *sdktrace.TracerProvider
}

func newEnvironment(ctx context.Context) (*environment, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	log := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stderr)

	tp, err := observability.InitTracing(ctx, cfg.TracingConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	return &environment{
		cfg:     cfg,
		log:     log,
		metrics: observability.NewMetrics(prometheus.NewRegistry()),
		cache:   structures.NewDocumentCache(cfg.Library.CacheSize, cfg.Library.CacheTTL),
		tp:      tp,
	}, nil
}

// load builds a snapshot from roots, or the configured roots when empty
func (e *environment) load(ctx context.Context, roots []string) (*library.Library, error) {
	if len(roots) == 0 {
		roots = e.cfg.Library.Roots
	}
	return library.New(ctx, roots,
		library.WithLogger(e.log),
		library.WithMetrics(e.metrics),
		library.WithWorkers(e.cfg.Library.Workers),
		library.WithPatterns(e.cfg.Library.RequirementPattern, e.cfg.Library.TestCasePattern),
		library.WithDocumentCache(e.cache),
		library.WithStrictStabilization(e.cfg.Library.Strict),
	)
}

// close flushes traces and writes the metrics file when configured
func (e *environment) close(ctx context.Context) error {
	if err := observability.ShutdownTracing(ctx, e.tp, e.log); err != nil {
		e.log.WithError(err).Warn("Failed to flush traces")
	}

	if path := e.cfg.Observability.MetricsFile; path != "" {
		if err := e.metrics.WriteToTextfile(path); err != nil {
			return fmt.Errorf("failed to write metrics to %s: %w", path, err)
		}
		e.log.Debugf("Wrote metrics to %s", path)
	}
	return nil
}

// closeWith closes the environment and joins a close failure into *err.
// Commands defer it so failed runs still flush traces and metrics.
func (e *environment) closeWith(ctx context.Context, err *error) {
	if cerr := e.close(ctx); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}

// describeLoadError expands a *library.DocfilesError with one line per
// document
func describeLoadError(err error) error {
	var docErr *library.DocfilesError
	if !errors.As(err, &docErr) {
		return err
	}
	var causes *multierror.Error
	if !errors.As(docErr.Causes(), &causes) {
		return err
	}
	var b strings.Builder
	for _, cause := range causes.Errors {
		fmt.Fprintf(&b, "\n  %s", cause)
	}
	return fmt.Errorf("%w%s", err, b.String())
}
