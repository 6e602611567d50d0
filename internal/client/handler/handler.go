package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"amlgate/internal/audit"
	"amlgate/internal/client"
	"amlgate/internal/screening"
	"amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
	"amlgate/pkg/platform/httputil"
	"amlgate/pkg/requestcontext"
)

// Service defines the interface for client operations.
type Service interface {
	Register(ctx context.Context, c client.Client) (client.Client, error)
	Get(ctx context.Context, clientID domain.ClientID) (client.Client, error)
	List(ctx context.Context) ([]client.Client, error)
	Refresh(ctx context.Context, clientID domain.ClientID) (client.Client, error)
	ClearBlock(ctx context.Context, clientID domain.ClientID, reason string) (client.Client, error)
	Delete(ctx context.Context, clientID domain.ClientID, reason string) (audit.Entry, error)
}

// Screenings is the read side of the screening history.
type Screenings interface {
	Current(ctx context.Context, clientID domain.ClientID) (*screening.Result, error)
	History(ctx context.Context, clientID domain.ClientID) ([]*screening.Result, error)
}

// Handler wires client endpoints to the client service.
type Handler struct {
	service    Service
	screenings Screenings
	logger     *slog.Logger
}

// New constructs a client handler with its dependencies.
func New(service Service, screenings Screenings, logger *slog.Logger) *Handler {
	return &Handler{service: service, screenings: screenings, logger: logger}
}

// Register mounts client endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/clients", h.HandleCreate)
	r.Get("/clients", h.HandleList)
	r.Get("/clients/{clientID}", h.HandleGet)
	r.Post("/clients/{clientID}/screen", h.HandleScreen)
	r.Get("/clients/{clientID}/risk", h.HandleRisk)
	r.Get("/clients/{clientID}/screenings", h.HandleScreenings)
	r.Post("/clients/{clientID}/clear-block", h.HandleClearBlock)
	r.Delete("/clients/{clientID}", h.HandleDelete)
}

// HandleCreate handles POST /clients requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateClientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.Register(ctx, req.ToClient())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "client created",
		"request_id", requestID,
		"client_id", created.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromClient(created))
}

// HandleList handles GET /clients requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, FromClient(c))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /clients/{clientID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClient(c))
}

// HandleScreen handles POST /clients/{clientID}/screen requests: a forced
// synchronous re-screen.
func (h *Handler) HandleScreen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Refresh(ctx, clientID)
	if err != nil {
		h.logger.ErrorContext(ctx, "screening refresh failed",
			"request_id", requestcontext.RequestID(ctx),
			"client_id", clientID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClient(c))
}

// HandleRisk handles GET /clients/{clientID}/risk requests: the latest
// screening snapshot projection.
func (h *Handler) HandleRisk(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}
	result, err := h.screenings.Current(r.Context(), clientID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "no screening on record"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromScreening(result))
}

// HandleScreenings handles GET /clients/{clientID}/screenings requests.
func (h *Handler) HandleScreenings(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}
	history, err := h.screenings.History(r.Context(), clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*RiskResponse, 0, len(history))
	for _, result := range history {
		out = append(out, FromScreening(result))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleClearBlock handles POST /clients/{clientID}/clear-block requests.
func (h *Handler) HandleClearBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ReasonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.ClearBlock(ctx, clientID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "client block cleared",
		"request_id", requestID,
		"client_id", clientID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromClient(c))
}

// HandleDelete handles DELETE /clients/{clientID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ReasonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.Delete(ctx, clientID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) clientID(w http.ResponseWriter, r *http.Request) (domain.ClientID, bool) {
	clientID, err := domain.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.ClientID{}, false
	}
	return clientID, true
}
