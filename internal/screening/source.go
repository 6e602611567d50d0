package screening

import (
	"context"
	"time"
)

// Finding is what a source reports when it answers. Found=false with a nil
// error is an explicit clear, not an absence of data.
type Finding struct {
	Found  bool
	Detail string
}

// Source is the capability interface every list source implements once.
// Heterogeneous vendor response shapes stay inside the implementation; the
// orchestrator's fan-out logic is source-agnostic.
type Source interface {
	// Name uniquely identifies the source in results and metrics.
	Name() string

	// Kind is the configured blocking/advisory effect of a hit.
	Kind() SourceKind

	// Check queries the source for the identity. An error means the source
	// could not answer; it must not be interpreted as a clear.
	Check(ctx context.Context, identity Identity) (Finding, error)
}

// retrying wraps a source with a single bounded backoff. Retries live here at
// the transport level only; the orchestrator and everything above it never
// retry a business decision.
type retrying struct {
	Source
	backoff time.Duration
}

func withRetry(s Source, backoff time.Duration) Source {
	if backoff <= 0 {
		return s
	}
	return &retrying{Source: s, backoff: backoff}
}

func (r *retrying) Check(ctx context.Context, identity Identity) (Finding, error) {
	finding, err := r.Source.Check(ctx, identity)
	if err == nil {
		return finding, nil
	}
	select {
	case <-ctx.Done():
		return Finding{}, err
	case <-time.After(r.backoff):
	}
	return r.Source.Check(ctx, identity)
}
