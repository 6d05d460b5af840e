package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campusconnect/internal/event/models"
	"campusconnect/internal/transport/shared"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/requestcontext"
)

// Service defines the event operations the handler depends on.
type Service interface {
	Create(ctx context.Context, organizer id.UserID, details models.Details) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Get(ctx context.Context, eventID id.EventID) (*models.Event, error)
	Update(ctx context.Context, me id.UserID, eventID id.EventID, details models.Details) (*models.Event, error)
	Delete(ctx context.Context, me id.UserID, eventID id.EventID) error
}

// Handler wires the event endpoints. All routes require authentication.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the event endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{eventID}", h.HandleGet)
		r.Put("/{eventID}", h.HandleUpdate)
		r.Delete("/{eventID}", h.HandleDelete)
	})
}

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Venue       string    `json:"venue"`
}

func (r eventRequest) details() models.Details {
	return models.Details{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Venue:       r.Venue,
	}
}

func (h *Handler) eventID(w http.ResponseWriter, r *http.Request) (id.EventID, bool) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return id.EventID{}, false
	}
	return eventID, true
}

// HandleCreate handles POST /events.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	var req eventRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	event, err := h.service.Create(ctx, me, req.details())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, event)
}

// HandleList handles GET /events.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string][]*models.Event{"events": events})
}

// HandleGet handles GET /events/{eventID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}
	event, err := h.service.Get(r.Context(), eventID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, event)
}

// HandleUpdate handles PUT /events/{eventID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	event, err := h.service.Update(ctx, me, eventID, req.details())
	if err != nil {
		h.logger.WarnContext(ctx, "event update refused",
			"user_id", me.String(),
			"event_id", eventID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, event)
}

// HandleDelete handles DELETE /events/{eventID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, me, eventID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}
