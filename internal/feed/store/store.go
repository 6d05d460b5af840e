package store

import (
	"context"

	"campusconnect/internal/feed/models"
	id "campusconnect/pkg/domain"
)

// PostStore is the persistence boundary for feed posts.
//
// Sentinel errors (pkg/platform/sentinel) communicate store facts:
// ErrNotFound for unknown post IDs, ErrUnavailable for backend failures.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, postID id.PostID) (*models.Post, error)

	// List returns all posts, newest first.
	List(ctx context.Context) ([]*models.Post, error)

	// Execute atomically runs validate then apply against one post while
	// holding its lock. If validate fails nothing is written.
	Execute(ctx context.Context, postID id.PostID,
		validate func(p *models.Post) error,
		apply func(p *models.Post)) (*models.Post, error)

	Delete(ctx context.Context, postID id.PostID) error
}
