package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"campusconnect/internal/audit"
	"campusconnect/internal/feed/models"
	"campusconnect/internal/feed/store"
	identitymodels "campusconnect/internal/identity/models"
	identitystore "campusconnect/internal/identity/store"
	"campusconnect/internal/platform/metrics"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/platform/sentinel"
	"campusconnect/pkg/requestcontext"
)

var tracer = otel.Tracer("campusconnect/internal/feed")

// AuditPublisher records feed activity.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service runs the campus feed: posts, likes, comments.
type Service struct {
	posts   store.PostStore
	users   identitystore.UserStore
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
}

func New(posts store.PostStore, users identitystore.UserStore, opts ...Option) *Service {
	s := &Service{posts: posts, users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// View is a post enriched with its author's public profile for listings.
type View struct {
	models.Post
	AuthorProfile *identitymodels.Summary `json:"author_profile,omitempty"`
	LikedByMe     bool                    `json:"liked_by_me"`
}

// CreatePost publishes a new feed entry. The image, when present, has
// already been stored; imageURL is its public path.
func (s *Service) CreatePost(ctx context.Context, author id.UserID, content, imageURL string) (*models.Post, error) {
	ctx, span := tracer.Start(ctx, "feed.CreatePost")
	defer span.End()

	post, err := models.NewPost(id.NewPostID(), author, content, imageURL, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create post")
	}

	s.emit(ctx, audit.Event{Actor: author, Action: audit.ActionPostCreated, Subject: post.ID.String()})
	s.metrics.IncrementPostsCreated()
	return post, nil
}

// ListPosts returns the feed newest first, with author profiles resolved and
// the caller's like state flagged.
func (s *Service) ListPosts(ctx context.Context, me id.UserID) ([]View, error) {
	ctx, span := tracer.Start(ctx, "feed.ListPosts")
	defer span.End()

	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list posts")
	}

	authorRefs := make([]id.UserID, 0, len(posts))
	seen := make(map[id.UserID]bool, len(posts))
	for _, post := range posts {
		if !seen[post.Author] {
			seen[post.Author] = true
			authorRefs = append(authorRefs, post.Author)
		}
	}
	profiles, err := s.users.FindSummaries(ctx, authorRefs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to resolve authors")
	}
	byAuthor := make(map[id.UserID]identitymodels.Summary, len(profiles))
	for _, profile := range profiles {
		byAuthor[profile.ID] = profile
	}

	views := make([]View, 0, len(posts))
	for _, post := range posts {
		view := View{Post: *post, LikedByMe: post.IsLikedBy(me)}
		if profile, ok := byAuthor[post.Author]; ok {
			view.AuthorProfile = &profile
		}
		views = append(views, view)
	}
	return views, nil
}

// ToggleLike flips the caller's like on a post and reports the new state.
func (s *Service) ToggleLike(ctx context.Context, me id.UserID, postID id.PostID) (liked bool, likeCount int, err error) {
	ctx, span := tracer.Start(ctx, "feed.ToggleLike")
	defer span.End()

	post, err := s.posts.Execute(ctx, postID,
		func(*models.Post) error { return nil },
		func(p *models.Post) { liked = p.ApplyLikeToggle(me) })
	if err != nil {
		return false, 0, s.mapStoreError(err)
	}
	return liked, len(post.Likes), nil
}

// AddComment appends a comment to a post.
func (s *Service) AddComment(ctx context.Context, me id.UserID, postID id.PostID, text string) (*models.Post, error) {
	ctx, span := tracer.Start(ctx, "feed.AddComment")
	defer span.End()

	post, err := s.posts.Execute(ctx, postID,
		func(p *models.Post) error { return p.CanComment(text) },
		func(p *models.Post) { p.ApplyComment(me, text, requestcontext.Now(ctx)) })
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return post, nil
}

// DeletePost removes a post. Only the author may delete it.
func (s *Service) DeletePost(ctx context.Context, me id.UserID, postID id.PostID) error {
	ctx, span := tracer.Start(ctx, "feed.DeletePost")
	defer span.End()

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return s.mapStoreError(err)
	}
	if err := post.CanDeleteBy(me); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return s.mapStoreError(err)
	}

	s.emit(ctx, audit.Event{Actor: me, Action: audit.ActionPostDeleted, Subject: postID.String()})
	return nil
}

func (s *Service) mapStoreError(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "post not found")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Emit(ctx, event)
	}
}
