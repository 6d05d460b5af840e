package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusconnect/internal/identity/models"
	"campusconnect/internal/identity/service"
	"campusconnect/internal/transport/shared"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks

// Service defines the identity operations the handler depends on.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, regNo, password string) (*service.LoginResult, error)
	GetByRegNo(ctx context.Context, regNo string) (*models.Summary, error)
	Search(ctx context.Context, me id.UserID, query string) ([]models.Summary, error)
}

// Handler wires account and member-directory endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
}

// RegisterProtected mounts the endpoints that require a valid token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/users", h.HandleSearch)
	r.Get("/users/{regNo}", h.HandleGetUser)
}

type registerRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	RegNo           string `json:"reg_no"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// HandleRegister handles POST /register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.service.Register(ctx, service.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		RegNo:           req.RegNo,
		Email:           req.Email,
		Mobile:          req.Mobile,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, user.Summary())
}

type loginRequest struct {
	RegNo    string `json:"reg_no"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  models.Summary `json:"user"`
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.service.Login(ctx, req.RegNo, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, loginResponse{Token: result.Token, User: result.User})
}

// HandleSearch handles GET /users?q=.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	summaries, err := h.service.Search(ctx, me, r.URL.Query().Get("q"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if summaries == nil {
		summaries = []models.Summary{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string][]models.Summary{"users": summaries})
}

// HandleGetUser handles GET /users/{regNo}.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regNo := chi.URLParam(r, "regNo")
	if regNo == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "registration number is required"))
		return
	}

	summary, err := h.service.GetByRegNo(ctx, regNo)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, summary)
}
