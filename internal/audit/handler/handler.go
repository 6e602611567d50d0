package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"amlgate/internal/audit"
	dErrors "amlgate/pkg/domain-errors"
	"amlgate/pkg/platform/httputil"
)

// Service defines the read interface over the ledger.
type Service interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Entry, error)
	ListByTarget(ctx context.Context, targetType audit.TargetType, targetID string) ([]audit.Entry, error)
}

// Handler exposes the ledger for compliance review. Read-only: the ledger
// has no HTTP write surface at all.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an audit handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit", h.HandleListRecent)
	r.Get("/audit/{targetType}/{targetID}", h.HandleListByTarget)
}

// HandleListRecent handles GET /audit requests.
func (h *Handler) HandleListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// HandleListByTarget handles GET /audit/{targetType}/{targetID} requests.
func (h *Handler) HandleListByTarget(w http.ResponseWriter, r *http.Request) {
	targetType := audit.TargetType(chi.URLParam(r, "targetType"))
	switch targetType {
	case audit.TargetClient, audit.TargetTransaction, audit.TargetDocument:
	default:
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "unknown target type %q", targetType))
		return
	}

	entries, err := h.service.ListByTarget(r.Context(), targetType, chi.URLParam(r, "targetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}
