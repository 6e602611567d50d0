package sources

import (
	"context"
	"time"

	"amlgate/internal/screening"
)

// Static is an in-process source backed by a fixed set of legal IDs. Used in
// development wiring and as the stub in service tests, the same way real
// source clients behave.
type Static struct {
	name    string
	kind    screening.SourceKind
	listed  map[string]string // legal ID -> detail
	latency time.Duration
	err     error
}

// NewStatic builds a static source. listed maps legal IDs to hit details.
func NewStatic(name string, kind screening.SourceKind, listed map[string]string) *Static {
	if listed == nil {
		listed = map[string]string{}
	}
	return &Static{name: name, kind: kind, listed: listed}
}

// WithLatency makes every check sleep, for timeout tests.
func (s *Static) WithLatency(d time.Duration) *Static {
	s.latency = d
	return s
}

// WithError makes every check fail, for partial-outage tests.
func (s *Static) WithError(err error) *Static {
	s.err = err
	return s
}

func (s *Static) Name() string               { return s.name }
func (s *Static) Kind() screening.SourceKind { return s.kind }

func (s *Static) Check(ctx context.Context, identity screening.Identity) (screening.Finding, error) {
	if s.latency > 0 {
		select {
		case <-ctx.Done():
			return screening.Finding{}, ctx.Err()
		case <-time.After(s.latency):
		}
	}
	if s.err != nil {
		return screening.Finding{}, s.err
	}
	detail, found := s.listed[identity.LegalID]
	return screening.Finding{Found: found, Detail: detail}, nil
}
