package screening

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"amlgate/internal/screening/metrics"
)

// Orchestrator fans one identity out to every configured source concurrently
// and collects per-source results. One source failing or timing out never
// aborts the others and never reads as clear: it becomes an explicit
// OutcomeUnknown entry. Partial completion is a valid outcome.
type Orchestrator struct {
	sources        []Source
	overallTimeout time.Duration
	sourceTimeout  time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

// NewOrchestrator wraps each source with the transport-level retry and fixes
// the fan-out timeouts.
func NewOrchestrator(srcs []Source, cfg Timeouts, logger *slog.Logger, m *metrics.Metrics) *Orchestrator {
	wrapped := make([]Source, len(srcs))
	for i, s := range srcs {
		wrapped[i] = withRetry(s, cfg.RetryBackoff)
	}
	return &Orchestrator{
		sources:        wrapped,
		overallTimeout: cfg.Overall,
		sourceTimeout:  cfg.PerSource,
		logger:         logger,
		metrics:        m,
	}
}

// Timeouts bounds a screening run.
type Timeouts struct {
	Overall      time.Duration
	PerSource    time.Duration
	RetryBackoff time.Duration
}

// Screen queries all sources and returns the full per-source map. The only
// error returned is caller cancellation; source failures are data, not errors.
func (o *Orchestrator) Screen(ctx context.Context, identity Identity) (map[string]SourceResult, error) {
	ctx, span := otel.Tracer("screening").Start(ctx, "orchestrator.screen")
	defer span.End()
	span.SetAttributes(attribute.Int("sources", len(o.sources)))

	if o.overallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.overallTimeout)
		defer cancel()
	}

	results := make(map[string]SourceResult, len(o.sources))
	var mu sync.Mutex

	// errgroup for structured shutdown; goroutines record failures in the
	// result map instead of returning them, so one bad source cannot cancel
	// its siblings.
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range o.sources {
		g.Go(func() error {
			result := o.checkOne(gctx, src, identity)
			mu.Lock()
			results[src.Name()] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Only caller cancellation surfaces as an error: a half-finished run
	// must not be persisted as if it were a screening.
	if err := ctx.Err(); err == context.Canceled {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) checkOne(ctx context.Context, src Source, identity Identity) SourceResult {
	if o.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.sourceTimeout)
		defer cancel()
	}

	start := time.Now()
	finding, err := src.Check(ctx, identity)
	elapsed := time.Since(start)
	o.metrics.ObserveSourceLatency(src.Name(), elapsed)

	result := SourceResult{
		Source:  src.Name(),
		Kind:    src.Kind(),
		Latency: elapsed,
	}
	switch {
	case err != nil:
		result.Outcome = OutcomeUnknown
		result.Err = err.Error()
		o.metrics.IncSourceError(src.Name())
		if o.logger != nil {
			o.logger.WarnContext(ctx, "source unavailable",
				"source", src.Name(),
				"client_id", identity.ClientID,
				"error", err,
			)
		}
	case finding.Found:
		result.Outcome = OutcomeFound
		result.Detail = finding.Detail
	default:
		result.Outcome = OutcomeClear
	}
	return result
}
