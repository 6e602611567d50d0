package client

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"amlgate/internal/audit"
	"amlgate/internal/screening"
	"amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
	"amlgate/pkg/platform/sentinel"
	"amlgate/pkg/requestcontext"
)

// Screener runs a full screening and persists the snapshot.
type Screener interface {
	Screen(ctx context.Context, identity screening.Identity, attrs screening.ClientAttributes) (*screening.Result, error)
	Current(ctx context.Context, clientID domain.ClientID) (*screening.Result, error)
}

// Auditor is the slice of the audit publisher this service needs.
type Auditor interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// Service owns the client lifecycle and the staleness gate.
type Service struct {
	store    Store
	screener Screener
	auditor  Auditor
	logger   *slog.Logger

	maxAgeDays int
	loc        *time.Location
}

// NewService constructs the client service. maxAgeDays bounds how old a
// screening may be before any transaction forces a refresh.
func NewService(store Store, screener Screener, auditor Auditor, logger *slog.Logger, maxAgeDays int, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:      store,
		screener:   screener,
		auditor:    auditor,
		logger:     logger,
		maxAgeDays: maxAgeDays,
		loc:        loc,
	}
}

// Register validates and creates a client in draft state.
func (s *Service) Register(ctx context.Context, c Client) (Client, error) {
	if strings.TrimSpace(c.LegalID) == "" {
		return Client{}, dErrors.New(dErrors.CodeValidation, "legal_id is required")
	}
	if strings.TrimSpace(c.FullName) == "" {
		return Client{}, dErrors.New(dErrors.CodeValidation, "full_name is required")
	}
	if c.PersonType != PersonNatural && c.PersonType != PersonLegal {
		return Client{}, dErrors.New(dErrors.CodeValidation, "person_type must be natural or legal")
	}

	now := requestcontext.Now(ctx)
	if c.ID.IsNil() {
		c.ID = domain.NewClientID()
	}
	c.State = StateDraft
	c.RiskLevel = screening.LevelPending
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Client{}, dErrors.New(dErrors.CodeConflict, "client already exists")
		}
		return Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "create client")
	}
	return c, nil
}

// Get returns one client; soft-deleted clients are not found.
func (s *Service) Get(ctx context.Context, clientID domain.ClientID) (Client, error) {
	c, err := s.store.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Client{}, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "load client")
	}
	return c, nil
}

// List returns all active clients.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.store.List(ctx)
}

// EnsureFresh is the staleness gate. It returns the client with a screening
// no older than the configured horizon, re-screening synchronously when
// needed. A blocked client, or one whose refresh turns up a blocking hit,
// comes back with a blocked error and no further processing may happen.
func (s *Service) EnsureFresh(ctx context.Context, clientID domain.ClientID) (Client, error) {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return Client{}, err
	}
	if c.Blocked() {
		return c, dErrors.Newf(dErrors.CodeBlocked, "client %s is blocked", clientID)
	}

	now := requestcontext.Now(ctx)
	if !IsStale(c.LastScreeningAt, now, s.loc, s.maxAgeDays) {
		return c, nil
	}

	s.logger.InfoContext(ctx, "screening stale, refreshing",
		"client_id", clientID,
		"age_days", AgeDays(c.LastScreeningAt, now, s.loc),
	)

	c, err = s.Refresh(ctx, clientID)
	if err != nil {
		return Client{}, err
	}
	if c.Blocked() {
		return c, dErrors.Newf(dErrors.CodeBlocked, "client %s is blocked", clientID)
	}
	return c, nil
}

// Refresh forces a synchronous re-screen regardless of screening age. A
// blocked client stays blocked; only ClearBlock changes that.
func (s *Service) Refresh(ctx context.Context, clientID domain.ClientID) (Client, error) {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return Client{}, err
	}
	if c.Blocked() {
		return c, dErrors.Newf(dErrors.CodeBlocked, "client %s is blocked", clientID)
	}

	result, err := s.screener.Screen(ctx, c.Identity(), c.Attributes())
	if err != nil {
		return Client{}, err
	}
	return s.applyScreening(ctx, c, result)
}

// applyScreening folds a screening snapshot into the client's case state.
func (s *Service) applyScreening(ctx context.Context, c Client, result *screening.Result) (Client, error) {
	wasBlocked := c.Blocked()

	c.RiskLevel = result.Level
	c.RiskScore = result.Score
	ts := result.Timestamp
	c.LastScreeningAt = &ts
	c.UpdatedAt = requestcontext.Now(ctx)

	switch {
	case result.HasBlockingHit():
		c.State = StateSuspended
	case result.Level == screening.LevelCritical:
		c.State = StateRejected
	case result.Level == screening.LevelHigh:
		c.State = StatePendingApproval
	default:
		c.State = StateApproved
	}

	if err := s.store.Update(ctx, c); err != nil {
		return Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "update client after screening")
	}

	if c.Blocked() && !wasBlocked {
		err := s.auditor.Emit(ctx, audit.Entry{
			Actor:      requestcontext.ActorID(ctx),
			Action:     audit.ActionClientBlocked,
			TargetType: audit.TargetClient,
			TargetID:   c.ID.String(),
			Detail:     "blocking watchlist hit",
		})
		if err != nil {
			return Client{}, err
		}
		s.logger.WarnContext(ctx, "client blocked on screening hit", "client_id", c.ID)
	}
	return c, nil
}

// ClearBlock is the only path out of the suspended state. Compliance officer
// role and a non-empty reason are both mandatory; the clearance lands in the
// ledger before the state changes take effect for callers.
func (s *Service) ClearBlock(ctx context.Context, clientID domain.ClientID, reason string) (Client, error) {
	if requestcontext.ActorRole(ctx) != requestcontext.RoleComplianceOfficer {
		return Client{}, dErrors.New(dErrors.CodeForbidden, "clearing a block requires the compliance officer role")
	}
	if strings.TrimSpace(reason) == "" {
		return Client{}, dErrors.New(dErrors.CodeValidation, "clearing a block requires a reason")
	}

	c, err := s.Get(ctx, clientID)
	if err != nil {
		return Client{}, err
	}
	if !c.Blocked() {
		return Client{}, dErrors.Newf(dErrors.CodeConflict, "client %s is not blocked", clientID)
	}

	err = s.auditor.Emit(ctx, audit.Entry{
		Actor:      requestcontext.ActorID(ctx),
		Action:     audit.ActionBlockCleared,
		TargetType: audit.TargetClient,
		TargetID:   c.ID.String(),
		Reason:     reason,
	})
	if err != nil {
		return Client{}, err
	}

	c.State = StatePendingApproval
	c.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, c); err != nil {
		return Client{}, dErrors.Wrap(err, dErrors.CodeInternal, "update client")
	}

	s.logger.InfoContext(ctx, "client block cleared",
		"client_id", clientID,
		"actor", requestcontext.ActorID(ctx),
	)
	return c, nil
}

// Delete soft-deletes a client. The reason is mandatory and the ledger write
// is fail-closed: if it cannot be recorded, the deletion does not happen.
func (s *Service) Delete(ctx context.Context, clientID domain.ClientID, reason string) (audit.Entry, error) {
	if strings.TrimSpace(reason) == "" {
		return audit.Entry{}, dErrors.New(dErrors.CodeAuditPolicy, "deletion requires a reason")
	}

	c, err := s.Get(ctx, clientID)
	if err != nil {
		return audit.Entry{}, err
	}

	now := requestcontext.Now(ctx)
	c.State = StateDeleted
	c.DeletedAt = &now
	c.DeleteReason = reason
	c.UpdatedAt = now

	entry := audit.Entry{
		Actor:      requestcontext.ActorID(ctx),
		Action:     audit.ActionClientDeleted,
		TargetType: audit.TargetClient,
		TargetID:   c.ID.String(),
		Reason:     reason,
		Timestamp:  now,
	}
	if err := s.auditor.Emit(ctx, entry); err != nil {
		return audit.Entry{}, err
	}
	if err := s.store.Update(ctx, c); err != nil {
		return audit.Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "soft delete client")
	}
	return entry, nil
}
