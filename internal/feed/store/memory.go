package store

import (
	"context"
	"sort"
	"sync"

	"campusconnect/internal/feed/models"
	id "campusconnect/pkg/domain"
	"campusconnect/pkg/platform/sentinel"
)

// InMemory keeps posts in process memory. Default backend for development
// and tests.
type InMemory struct {
	mu    sync.RWMutex
	posts map[id.PostID]*models.Post
}

func NewInMemory() *InMemory {
	return &InMemory{posts: make(map[id.PostID]*models.Post)}
}

func (s *InMemory) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = post.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, postID id.PostID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if post, ok := s.posts[postID]; ok {
		return post.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]*models.Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, post.Clone())
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID.String() > posts[j].ID.String()
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *InMemory) Execute(_ context.Context, postID id.PostID,
	validate func(p *models.Post) error,
	apply func(p *models.Post)) (*models.Post, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(post); err != nil {
		return nil, err
	}
	apply(post)
	return post.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, postID id.PostID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.posts, postID)
	return nil
}
