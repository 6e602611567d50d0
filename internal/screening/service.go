package screening

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"amlgate/internal/audit"
	"amlgate/internal/screening/metrics"
	id "amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
	"amlgate/pkg/platform/sentinel"
	"amlgate/pkg/requestcontext"
)

// Auditor is the slice of the audit publisher this service needs.
type Auditor interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// Service runs screenings end to end: fan-out, scoring, persistence, audit.
type Service struct {
	orch    *Orchestrator
	weights Weights
	store   Store
	cache   Cache
	auditor Auditor
	logger  *slog.Logger
	metrics *metrics.Metrics

	// group collapses concurrent screenings of the same client into one
	// run; unrelated clients proceed fully in parallel.
	group singleflight.Group
}

// Option configures the Service.
type Option func(*Service)

// WithCache attaches the latest-result cache.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics attaches the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs the screening service.
func NewService(orch *Orchestrator, weights Weights, store Store, auditor Auditor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		orch:    orch,
		weights: weights,
		store:   store,
		auditor: auditor,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen runs a full screening for the client and persists the snapshot.
// Re-running on identical source responses yields an identical score/level.
func (s *Service) Screen(ctx context.Context, identity Identity, attrs ClientAttributes) (*Result, error) {
	v, err, _ := s.group.Do(identity.ClientID.String(), func() (any, error) {
		return s.screen(ctx, identity, attrs)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (s *Service) screen(ctx context.Context, identity Identity, attrs ClientAttributes) (*Result, error) {
	start := time.Now()

	sources, err := s.orch.Screen(ctx, identity)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "screening cancelled")
	}

	score, level, alerts := s.weights.Score(sources, attrs)

	result := &Result{
		ID:        id.NewScreeningID(),
		ClientID:  identity.ClientID,
		Score:     score,
		Level:     level,
		Approved:  level == LevelLow || level == LevelMedium,
		Sources:   sources,
		Alerts:    alerts,
		Timestamp: requestcontext.Now(ctx),
	}

	if err := s.store.Append(ctx, result); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist screening")
	}

	// Fail-closed: a screening that cannot be audited did not happen.
	err = s.auditor.Emit(ctx, audit.Entry{
		Actor:      requestcontext.ActorID(ctx),
		Action:     audit.ActionScreeningCompleted,
		TargetType: audit.TargetClient,
		TargetID:   identity.ClientID.String(),
		Detail:     string(level),
		Timestamp:  result.Timestamp,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "audit screening")
	}

	if s.cache != nil {
		if err := s.cache.SaveLatest(ctx, result); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "screening cache write failed",
				"client_id", identity.ClientID,
				"error", err,
			)
		}
	}

	s.metrics.IncScreening(string(level))
	s.metrics.ObserveScreenLatency(time.Since(start))

	if s.logger != nil {
		s.logger.InfoContext(ctx, "screening completed",
			"client_id", identity.ClientID,
			"score", score,
			"level", level,
			"blocking_hit", result.HasBlockingHit(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return result, nil
}

// Current returns the client's latest screening snapshot, trying the cache
// first. A missing history is reported as sentinel.ErrNotFound.
func (s *Service) Current(ctx context.Context, clientID id.ClientID) (*Result, error) {
	if s.cache != nil {
		if cached, err := s.cache.FindLatest(ctx, clientID); err == nil {
			return cached, nil
		} else if !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
			s.logger.WarnContext(ctx, "screening cache read failed",
				"client_id", clientID,
				"error", err,
			)
		}
	}
	return s.store.Latest(ctx, clientID)
}

// History returns all snapshots for a client, oldest first.
func (s *Service) History(ctx context.Context, clientID id.ClientID) ([]*Result, error) {
	return s.store.ListByClient(ctx, clientID)
}
