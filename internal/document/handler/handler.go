package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"amlgate/internal/audit"
	"amlgate/internal/document"
	"amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
	"amlgate/pkg/platform/httputil"
	"amlgate/pkg/requestcontext"
)

// Service defines the interface for document operations.
type Service interface {
	Attach(ctx context.Context, d document.Document) (document.Document, error)
	ListByClient(ctx context.Context, clientID domain.ClientID) ([]document.Document, error)
	Delete(ctx context.Context, docID domain.DocumentID, reason string) (audit.Entry, error)
}

// Handler wires document endpoints to the document service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a document handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts document endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/documents", h.HandleAttach)
	r.Get("/clients/{clientID}/documents", h.HandleListByClient)
	r.Delete("/documents/{documentID}", h.HandleDelete)
}

// AttachRequest is the HTTP request body for POST /documents.
type AttachRequest struct {
	ClientID string `json:"client_id"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	URI      string `json:"uri"`

	parsedClientID domain.ClientID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *AttachRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	clientID, err := domain.ParseClientID(r.ClientID)
	if err != nil {
		return err
	}
	r.parsedClientID = clientID

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Kind == "" {
		r.Kind = string(document.KindOther)
	}
	return nil
}

// ReasonRequest is the body for DELETE /documents/{documentID}.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// Validate implements Validatable.
func (r *ReasonRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return nil
}

// HandleAttach handles POST /documents requests.
func (h *Handler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AttachRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.Attach(ctx, document.Document{
		ClientID: req.parsedClientID,
		Kind:     document.Kind(req.Kind),
		Name:     req.Name,
		URI:      req.URI,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

// HandleListByClient handles GET /clients/{clientID}/documents requests.
func (h *Handler) HandleListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := domain.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docs, err := h.service.ListByClient(r.Context(), clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, docs)
}

// HandleDelete handles DELETE /documents/{documentID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	docID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ReasonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.Delete(ctx, docID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document deleted",
		"request_id", requestID,
		"document_id", docID,
	)
	httputil.WriteJSON(w, http.StatusOK, entry)
}
