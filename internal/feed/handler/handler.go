package handler

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"campusconnect/internal/feed/models"
	"campusconnect/internal/feed/service"
	"campusconnect/internal/transport/shared"
	"campusconnect/internal/upload"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/requestcontext"
)

// Service defines the feed operations the handler depends on.
type Service interface {
	CreatePost(ctx context.Context, author id.UserID, content, imageURL string) (*models.Post, error)
	ListPosts(ctx context.Context, me id.UserID) ([]service.View, error)
	ToggleLike(ctx context.Context, me id.UserID, postID id.PostID) (bool, int, error)
	AddComment(ctx context.Context, me id.UserID, postID id.PostID, text string) (*models.Post, error)
	DeletePost(ctx context.Context, me id.UserID, postID id.PostID) error
}

// ImageStore persists uploaded post images.
type ImageStore interface {
	Save(header *multipart.FileHeader) (string, error)
}

// Handler wires the feed endpoints. All routes require authentication.
type Handler struct {
	service Service
	images  ImageStore
	logger  *slog.Logger
}

func New(service Service, images ImageStore, logger *slog.Logger) *Handler {
	return &Handler{service: service, images: images, logger: logger}
}

// Register mounts the feed endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Post("/{postID}/like", h.HandleLike)
		r.Post("/{postID}/comment", h.HandleComment)
		r.Delete("/{postID}", h.HandleDelete)
	})
}

func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (id.PostID, bool) {
	postID, err := id.ParsePostID(chi.URLParam(r, "postID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid post id"))
		return id.PostID{}, false
	}
	return postID, true
}

// HandleCreate handles POST /posts. Accepts multipart form data with a
// "content" field and an optional "image" file, or a plain JSON body with
// just content.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	var content, imageURL string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
			return
		}
		content = r.FormValue("content")
		if _, header, err := r.FormFile("image"); err == nil {
			url, err := h.images.Save(header)
			if err != nil {
				h.logger.WarnContext(ctx, "image upload failed",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				shared.WriteError(w, err)
				return
			}
			imageURL = url
		}
	} else {
		var req struct {
			Content string `json:"content"`
		}
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.WriteError(w, err)
			return
		}
		content = req.Content
	}

	post, err := h.service.CreatePost(ctx, me, content, imageURL)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, post)
}

// HandleList handles GET /posts.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	views, err := h.service.ListPosts(ctx, me)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if views == nil {
		views = []service.View{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string][]service.View{"posts": views})
}

// HandleLike handles POST /posts/{postID}/like. Toggles the caller's like.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	postID, ok := h.postID(w, r)
	if !ok {
		return
	}

	liked, likeCount, err := h.service.ToggleLike(ctx, me, postID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"liked": liked, "like_count": likeCount})
}

// HandleComment handles POST /posts/{postID}/comment.
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	postID, ok := h.postID(w, r)
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

	post, err := h.service.AddComment(ctx, me, postID, req.Text)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, post)
}

// HandleDelete handles DELETE /posts/{postID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := requestcontext.UserID(ctx)

	postID, ok := h.postID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePost(ctx, me, postID); err != nil {
		h.logger.WarnContext(ctx, "post deletion refused",
			"user_id", me.String(),
			"post_id", postID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}
