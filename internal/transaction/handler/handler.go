package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"amlgate/internal/audit"
	"amlgate/internal/transaction"
	"amlgate/pkg/domain"
	"amlgate/pkg/platform/httputil"
	"amlgate/pkg/requestcontext"
)

// Service defines the interface for transaction operations.
type Service interface {
	Register(ctx context.Context, req transaction.RegisterRequest) (*transaction.Result, error)
	Get(ctx context.Context, txID domain.TransactionID) (transaction.Transaction, error)
	Delete(ctx context.Context, txID domain.TransactionID, reason string) (audit.Entry, error)
	Amend(ctx context.Context, txID domain.TransactionID, req transaction.RegisterRequest, reason string) (*transaction.Result, error)
}

// Handler wires transaction endpoints to the transaction service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a transaction handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts transaction endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/transactions", h.HandleRegister)
	r.Get("/transactions/{transactionID}", h.HandleGet)
	r.Delete("/transactions/{transactionID}", h.HandleDelete)
	r.Post("/transactions/{transactionID}/amend", h.HandleAmend)
}

// HandleRegister handles POST /transactions requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[RegisterTransactionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Register(ctx, req.ToRegisterRequest())
	if err != nil {
		h.logger.ErrorContext(ctx, "transaction registration failed",
			"request_id", requestID,
			"client_id", req.ClientID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "transaction registered",
		"request_id", requestID,
		"transaction_id", result.Transaction.ID,
		"classification", result.Transaction.Classification,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromResult(result))
}

// HandleGet handles GET /transactions/{transactionID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	txID, ok := h.transactionID(w, r)
	if !ok {
		return
	}
	tx, err := h.service.Get(r.Context(), txID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTransaction(tx))
}

// HandleDelete handles DELETE /transactions/{transactionID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	txID, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ReasonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.Delete(ctx, txID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "transaction deleted",
		"request_id", requestID,
		"transaction_id", txID,
	)
	httputil.WriteJSON(w, http.StatusOK, entry)
}

// HandleAmend handles POST /transactions/{transactionID}/amend requests.
func (h *Handler) HandleAmend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	txID, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AmendTransactionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Amend(ctx, txID, req.ToRegisterRequest(), req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "transaction amended",
		"request_id", requestID,
		"original_id", txID,
		"replacement_id", result.Transaction.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromResult(result))
}

func (h *Handler) transactionID(w http.ResponseWriter, r *http.Request) (domain.TransactionID, bool) {
	txID, err := domain.ParseTransactionID(chi.URLParam(r, "transactionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.TransactionID{}, false
	}
	return txID, true
}
