package document

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"amlgate/internal/audit"
	"amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
	"amlgate/pkg/platform/sentinel"
	"amlgate/pkg/requestcontext"
)

// Auditor is the slice of the audit publisher this service needs.
type Auditor interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// Service owns document attachment and reasoned removal.
type Service struct {
	store   Store
	auditor Auditor
	logger  *slog.Logger
}

// NewService constructs the document service.
func NewService(store Store, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{store: store, auditor: auditor, logger: logger}
}

// Attach records a document reference for a client.
func (s *Service) Attach(ctx context.Context, d Document) (Document, error) {
	if d.ClientID.IsNil() {
		return Document{}, dErrors.New(dErrors.CodeValidation, "client_id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return Document{}, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if d.ID.IsNil() {
		d.ID = domain.NewDocumentID()
	}
	d.CreatedAt = requestcontext.Now(ctx)

	if err := s.store.Create(ctx, d); err != nil {
		return Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "create document")
	}
	return d, nil
}

// ListByClient returns a client's active documents.
func (s *Service) ListByClient(ctx context.Context, clientID domain.ClientID) ([]Document, error) {
	return s.store.ListByClient(ctx, clientID)
}

// Delete soft-deletes a document; the reason is mandatory and hits the
// ledger before the stamp.
func (s *Service) Delete(ctx context.Context, docID domain.DocumentID, reason string) (audit.Entry, error) {
	if strings.TrimSpace(reason) == "" {
		return audit.Entry{}, dErrors.New(dErrors.CodeAuditPolicy, "deletion requires a reason")
	}
	if _, err := s.store.Get(ctx, docID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return audit.Entry{}, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return audit.Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "load document")
	}

	now := requestcontext.Now(ctx)
	entry := audit.Entry{
		Actor:      requestcontext.ActorID(ctx),
		Action:     audit.ActionDocumentDeleted,
		TargetType: audit.TargetDocument,
		TargetID:   docID.String(),
		Reason:     reason,
		Timestamp:  now,
	}
	if err := s.auditor.Emit(ctx, entry); err != nil {
		return audit.Entry{}, err
	}

	if err := s.store.SoftDelete(ctx, docID, reason, now); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyDeleted) {
			return audit.Entry{}, dErrors.New(dErrors.CodeConflict, "document already deleted")
		}
		return audit.Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "soft delete document")
	}
	return entry, nil
}
