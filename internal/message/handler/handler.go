package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusconnect/internal/message/models"
	"campusconnect/internal/message/service"
	"campusconnect/internal/transport/shared"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/requestcontext"
)

// Service defines the messaging operations the handler depends on.
type Service interface {
	Send(ctx context.Context, me, peer id.UserID, text string) (*models.Message, error)
	Conversation(ctx context.Context, me, peer id.UserID) ([]service.View, error)
	React(ctx context.Context, me id.UserID, messageID id.MessageID, emoji string) (*models.Message, error)
	Delete(ctx context.Context, me id.UserID, messageID id.MessageID) error
}

// Handler wires the direct-messaging endpoints. All routes require
// authentication.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the messaging endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/messages/{userID}", func(r chi.Router) {
		r.Get("/", h.HandleConversation)
		r.Post("/", h.HandleSend)
		r.Delete("/{msgID}", h.HandleDelete)
		r.Post("/{msgID}/react", h.HandleReact)
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

func (h *Handler) messageID(w http.ResponseWriter, r *http.Request) (id.MessageID, bool) {
	messageID, err := id.ParseMessageID(chi.URLParam(r, "msgID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid message id"))
		return id.MessageID{}, false
	}
	return messageID, true
}

// HandleSend handles POST /messages/{userID}.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	peer, ok := h.peerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	message, err := h.service.Send(ctx, me, peer, req.Text)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, message)
}

// HandleConversation handles GET /messages/{userID}.
func (h *Handler) HandleConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	peer, ok := h.peerID(w, r)
	if !ok {
		return
	}

	views, err := h.service.Conversation(ctx, me, peer)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if views == nil {
		views = []service.View{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string][]service.View{"messages": views})
}

// HandleReact handles POST /messages/{userID}/{msgID}/react.
func (h *Handler) HandleReact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	messageID, ok := h.messageID(w, r)
	if !ok {
		return
	}

	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	message, err := h.service.React(ctx, me, messageID, req.Emoji)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, message)
}

// HandleDelete handles DELETE /messages/{userID}/{msgID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	messageID, ok := h.messageID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, me, messageID); err != nil {
		h.logger.WarnContext(ctx, "message deletion refused",
			"user_id", me.String(),
			"message_id", messageID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "message deleted"})
}
