package transaction

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"amlgate/internal/audit"
	"amlgate/internal/client"
	"amlgate/internal/platform/locks"
	"amlgate/internal/reference"
	"amlgate/internal/transaction/metrics"
	"amlgate/internal/units"
	"amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
	"amlgate/pkg/platform/sentinel"
	"amlgate/pkg/requestcontext"
)

// anomalyAlertFloor is the model score below which no alert is contributed.
const anomalyAlertFloor = 0.7

// Gate is the slice of the client service the registration path needs.
type Gate interface {
	EnsureFresh(ctx context.Context, clientID domain.ClientID) (client.Client, error)
}

// Auditor is the slice of the audit publisher this service needs.
type Auditor interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// RegisterRequest is one transaction to classify and persist.
type RegisterRequest struct {
	ClientID domain.ClientID
	// Activity is the declared activity. Empty falls back to the client's
	// locked default; that fallback is the only implicit resolution.
	Activity   domain.ActivityCode
	Amount     decimal.Decimal
	Currency   string
	Method     PaymentMethod
	OccurredAt time.Time
	// amends links a replacement to the record it supersedes.
	amends *domain.TransactionID
}

// Service registers transactions: staleness gate, activity resolution, unit
// conversion, window classification, persistence and audit.
type Service struct {
	store      Store
	gate       Gate
	catalog    *reference.Catalog
	converter  *units.Converter
	classifier Classifier
	auditor    Auditor
	logger     *slog.Logger
	metrics    *metrics.Metrics
	anomaly    AnomalyScorer

	// locks serializes read-window, classify and persist per client. The
	// lock is never held across the screening refresh.
	locks        *locks.Keyed
	windowMonths int
}

// Option configures the Service.
type Option func(*Service)

// WithAnomalyScorer attaches the external anomaly model.
func WithAnomalyScorer(a AnomalyScorer) Option {
	return func(s *Service) { s.anomaly = a }
}

// WithMetrics attaches the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs the transaction service with a 6-month accumulation
// window.
func NewService(store Store, gate Gate, catalog *reference.Catalog, converter *units.Converter, auditor Auditor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:        store,
		gate:         gate,
		catalog:      catalog,
		converter:    converter,
		classifier:   DefaultClassifier(),
		auditor:      auditor,
		logger:       logger,
		locks:        locks.NewKeyed(),
		windowMonths: 6,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates, classifies and persists one transaction. The client's
// screening is refreshed first when stale; a blocked client gets a blocked
// error and nothing is persisted. Cancellation before classification
// completes also persists nothing.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	ctx, span := otel.Tracer("transaction").Start(ctx, "transaction.register")
	defer span.End()
	start := time.Now()

	if !req.Amount.IsPositive() {
		s.metrics.IncRejection("amount")
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(req.Currency) == "" {
		s.metrics.IncRejection("currency")
		return nil, dErrors.New(dErrors.CodeValidation, "currency is required")
	}
	if req.OccurredAt.IsZero() {
		req.OccurredAt = requestcontext.Now(ctx)
	}

	// Screening refresh runs outside the per-client lock; it can take
	// seconds and must not serialize unrelated registrations behind it.
	cl, err := s.gate.EnsureFresh(ctx, req.ClientID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeBlocked) {
			s.metrics.IncRejection("blocked")
		}
		return nil, err
	}

	activity, err := s.resolveActivity(ctx, cl, req.Activity)
	if err != nil {
		s.metrics.IncRejection("activity")
		return nil, err
	}

	entry, err := s.catalog.Lookup(ctx, activity)
	if err != nil {
		s.metrics.IncRejection("activity")
		return nil, dErrors.Newf(dErrors.CodeValidation, "activity %q is not in the regulatory catalog", activity)
	}
	rules, err := entry.ResolveOn(req.OccurredAt)
	if err != nil {
		s.metrics.IncRejection("activity")
		return nil, dErrors.Newf(dErrors.CodeValidation, "no thresholds in force for %q on %s", activity, req.OccurredAt.Format("2006-01-02"))
	}

	amountUnits, err := s.converter.ToUnits(req.Amount, req.Currency, req.OccurredAt)
	if err != nil {
		s.metrics.IncRejection("conversion")
		return nil, err
	}

	tx := Transaction{
		ID:          domain.NewTransactionID(),
		ClientID:    cl.ID,
		Activity:    activity,
		Amount:      req.Amount,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		Method:      req.Method,
		AmountUnits: amountUnits,
		OccurredAt:  req.OccurredAt,
		CreatedAt:   requestcontext.Now(ctx),
		Amends:      req.amends,
	}

	// Critical section: the window read and the insert must see a stable
	// view per client or two near-simultaneous registrations could both
	// land under the threshold.
	s.locks.Lock(cl.ID.String())
	defer s.locks.Unlock(cl.ID.String())

	from := windowStart(req.OccurredAt, s.windowMonths)
	window, err := s.store.ListWindow(ctx, cl.ID, activity, from, req.OccurredAt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read accumulation window")
	}
	if req.amends != nil {
		// The record being amended is retired after the replacement lands;
		// it must not count toward the replacement's accumulation.
		window = slices.DeleteFunc(window, func(t Transaction) bool { return t.ID == *req.amends })
	}

	outcome := s.classifier.Classify(tx, window, rules, entry.LegalBasis)
	tx.Classification = outcome.Classification
	tx.Obligation = outcome.Obligation
	tx.Alerts = outcome.Alerts
	span.AddEvent("classified", trace.WithAttributes(
		attribute.String("classification", string(tx.Classification)),
		attribute.String("obligation", string(tx.Obligation)),
	))

	if outcome.Classification == ClassConcerning && s.anomaly != nil {
		s.consultAnomaly(ctx, &tx)
	}

	// All or nothing: a caller that gave up must not find a half-registered
	// transaction later.
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registration cancelled")
	}

	if err := s.store.Create(ctx, tx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist transaction")
	}

	// Fail-closed: an unaudited registration is reported as failed.
	err = s.auditor.Emit(ctx, audit.Entry{
		Actor:      requestcontext.ActorID(ctx),
		Action:     audit.ActionTransactionRegistered,
		TargetType: audit.TargetTransaction,
		TargetID:   tx.ID.String(),
		Detail:     string(tx.Classification),
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncClassification(string(tx.Classification), string(tx.Obligation))
	s.metrics.ObserveLatency(time.Since(start))

	s.logger.InfoContext(ctx, "transaction registered",
		"transaction_id", tx.ID,
		"client_id", cl.ID,
		"activity", activity,
		"amount_units", tx.AmountUnits,
		"classification", tx.Classification,
		"obligation", tx.Obligation,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Transaction:      tx,
		AccumulatedUnits: outcome.AccumulatedUnits,
		WindowFrom:       from,
	}, nil
}

// resolveActivity applies the capability rule: the locked default may only
// be overridden by a compliance officer. An absent declaration falls back to
// the client default explicitly.
func (s *Service) resolveActivity(ctx context.Context, cl client.Client, declared domain.ActivityCode) (domain.ActivityCode, error) {
	if declared == "" {
		if cl.Activity == "" {
			return "", dErrors.New(dErrors.CodeValidation, "activity is required and the client has no default")
		}
		return cl.Activity, nil
	}
	if cl.ActivityLocked && declared != cl.Activity &&
		requestcontext.ActorRole(ctx) != requestcontext.RoleComplianceOfficer {
		return "", dErrors.Newf(dErrors.CodeForbidden,
			"client activity is locked to %q; overriding requires the compliance officer role", cl.Activity)
	}
	return declared, nil
}

// consultAnomaly asks the external model for context. A failing or quiet
// model changes nothing about the verdict.
func (s *Service) consultAnomaly(ctx context.Context, tx *Transaction) {
	score, err := s.anomaly.Score(ctx, *tx)
	if err != nil {
		s.logger.WarnContext(ctx, "anomaly scorer unavailable",
			"transaction_id", tx.ID,
			"error", err,
		)
		return
	}
	if score >= anomalyAlertFloor {
		tx.Alerts = append(tx.Alerts, anomalyAlert(score))
	}
}

// Get returns one transaction, soft-deleted included; deleted records keep
// their audit value.
func (s *Service) Get(ctx context.Context, txID domain.TransactionID) (Transaction, error) {
	tx, err := s.store.Get(ctx, txID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Transaction{}, dErrors.New(dErrors.CodeNotFound, "transaction not found")
		}
		return Transaction{}, dErrors.Wrap(err, dErrors.CodeInternal, "load transaction")
	}
	return tx, nil
}

// Delete soft-deletes a transaction. The reason is mandatory and the ledger
// write happens before the stamp: no reason, no deletion.
func (s *Service) Delete(ctx context.Context, txID domain.TransactionID, reason string) (audit.Entry, error) {
	if strings.TrimSpace(reason) == "" {
		return audit.Entry{}, dErrors.New(dErrors.CodeAuditPolicy, "deletion requires a reason")
	}
	if _, err := s.Get(ctx, txID); err != nil {
		return audit.Entry{}, err
	}

	now := requestcontext.Now(ctx)
	entry := audit.Entry{
		Actor:      requestcontext.ActorID(ctx),
		Action:     audit.ActionTransactionDeleted,
		TargetType: audit.TargetTransaction,
		TargetID:   txID.String(),
		Reason:     reason,
		Timestamp:  now,
	}
	if err := s.auditor.Emit(ctx, entry); err != nil {
		return audit.Entry{}, err
	}

	if err := s.store.SoftDelete(ctx, txID, reason, now); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyDeleted) {
			return audit.Entry{}, dErrors.New(dErrors.CodeConflict, "transaction already deleted")
		}
		return audit.Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "soft delete transaction")
	}
	return entry, nil
}

// Amend replaces a registered transaction: the correction is registered as a
// new record pointing at the old one, then the old record is soft-deleted
// with the given reason. Records are never edited in place.
func (s *Service) Amend(ctx context.Context, txID domain.TransactionID, req RegisterRequest, reason string) (*Result, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, dErrors.New(dErrors.CodeAuditPolicy, "amendment requires a reason")
	}
	old, err := s.Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	if old.Deleted() {
		return nil, dErrors.New(dErrors.CodeConflict, "transaction already deleted")
	}
	if req.ClientID != old.ClientID {
		return nil, dErrors.New(dErrors.CodeValidation, "amendment must keep the same client")
	}

	req.amends = &txID
	result, err := s.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.Delete(ctx, txID, reason); err != nil {
		// The replacement exists; surface the inconsistency instead of
		// pretending the amendment completed.
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "replacement registered but original not deleted")
	}
	return result, nil
}
