package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"campusconnect/internal/identity/models"
	id "campusconnect/pkg/domain"
	"campusconnect/pkg/platform/sentinel"
)

// InMemory keeps user records in process memory. The default backend for
// development and tests; it favors clarity over performance.
//
// A single mutex guards the whole map, which makes ExecutePair trivially
// atomic: no writer can interleave between the two record mutations.
type InMemory struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byRegNo map[string]id.UserID
	order   []id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[id.UserID]*models.User),
		byRegNo: make(map[string]id.UserID),
	}
}

func (s *InMemory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.RegNo)
	if _, taken := s.byRegNo[key]; taken {
		return sentinel.ErrConflict
	}
	s.users[user.ID] = user.Clone()
	s.byRegNo[key] = user.ID
	s.order = append(s.order, user.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		return user.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByRegNo(_ context.Context, regNo string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byRegNo[strings.ToLower(regNo)]; ok {
		return s.users[userID].Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindSummaries(_ context.Context, refs []id.UserID) ([]models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]models.Summary, 0, len(refs))
	for _, ref := range refs {
		if user, ok := s.users[ref]; ok {
			summaries = append(summaries, user.Summary())
		}
	}
	return summaries, nil
}

func (s *InMemory) Search(_ context.Context, excludeID id.UserID, query string) ([]models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]*models.User, 0, len(s.users))
	for _, userID := range s.order {
		user := s.users[userID]
		if user.ID == excludeID {
			continue
		}
		if query != "" && !matchesQuery(user, query) {
			continue
		}
		matches = append(matches, user)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})

	summaries := make([]models.Summary, 0, len(matches))
	for _, user := range matches {
		summaries = append(summaries, user.Summary())
	}
	return summaries, nil
}

func matchesQuery(user *models.User, query string) bool {
	return strings.Contains(strings.ToLower(user.Name), query) ||
		strings.Contains(strings.ToLower(user.RegNo), query) ||
		strings.Contains(strings.ToLower(user.Email), query)
}

func (s *InMemory) Execute(_ context.Context, userID id.UserID,
	validate func(u *models.User) error,
	apply func(u *models.User)) (*models.User, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(user); err != nil {
		return nil, err
	}
	apply(user)
	return user.Clone(), nil
}

func (s *InMemory) ExecutePair(_ context.Context, firstID, secondID id.UserID,
	validate func(first, second *models.User) error,
	apply func(first, second *models.User)) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	first, ok := s.users[firstID]
	if !ok {
		return sentinel.ErrNotFound
	}
	second, ok := s.users[secondID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if err := validate(first, second); err != nil {
		return err
	}
	apply(first, second)
	return nil
}
