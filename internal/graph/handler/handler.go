package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusconnect/internal/identity/models"
	"campusconnect/internal/transport/shared"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks

// Service defines the graph operations the handler depends on.
type Service interface {
	SendRequest(ctx context.Context, me, recipient id.UserID) error
	AcceptRequest(ctx context.Context, me, requester id.UserID) error
	RejectRequest(ctx context.Context, me, requester id.UserID) error
	ListIncoming(ctx context.Context, me id.UserID) ([]models.Summary, error)
	ListConnections(ctx context.Context, me id.UserID) ([]models.Summary, error)
	ListOutgoing(ctx context.Context, me id.UserID) ([]models.Summary, error)
	ListCandidates(ctx context.Context, me id.UserID, query string) ([]models.Summary, error)
}

// Handler wires the connection endpoints to the graph service. All routes
// require authentication; the user ID comes from the verified token.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the connection endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/connections", func(r chi.Router) {
		r.Get("/", h.HandleCandidates)
		r.Get("/requests", h.HandleIncoming)
		r.Get("/sent", h.HandleOutgoing)
		r.Get("/all", h.HandleConnections)
		r.Post("/request/{userID}", h.HandleSend)
		r.Post("/accept/{userID}", h.HandleAccept)
		r.Post("/reject/{userID}", h.HandleReject)
	})
}

func (h *Handler) peerID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	peer, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return id.UserID{}, false
	}
	return peer, true
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op string,
	call func(ctx context.Context, me, peer id.UserID) error, message string) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	peer, ok := h.peerID(w, r)
	if !ok {
		return
	}

	if err := call(ctx, me, peer); err != nil {
		h.logger.WarnContext(ctx, "connection operation failed",
			"op", op,
			"user_id", me.String(),
			"peer_id", peer.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": message})
}

// HandleSend handles POST /connections/request/{userID}.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "send", h.service.SendRequest, "request sent")
}

// HandleAccept handles POST /connections/accept/{userID}.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "accept", h.service.AcceptRequest, "request accepted")
}

// HandleReject handles POST /connections/reject/{userID}.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "reject", h.service.RejectRequest, "request rejected")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request,
	call func(ctx context.Context, me id.UserID) ([]models.Summary, error)) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	summaries, err := call(ctx, me)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if summaries == nil {
		summaries = []models.Summary{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string][]models.Summary{"users": summaries})
}

// HandleIncoming handles GET /connections/requests.
func (h *Handler) HandleIncoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListIncoming)
}

// HandleOutgoing handles GET /connections/sent.
func (h *Handler) HandleOutgoing(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListOutgoing)
}

// HandleConnections handles GET /connections/all.
func (h *Handler) HandleConnections(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListConnections)
}

// HandleCandidates handles GET /connections?q=.
func (h *Handler) HandleCandidates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	h.list(w, r, func(ctx context.Context, me id.UserID) ([]models.Summary, error) {
		return h.service.ListCandidates(ctx, me, query)
	})
}
