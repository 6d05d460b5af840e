package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type RateLimitSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *RateLimitSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) TestAllowWithinLimit() {
	for i := 0; i < 3; i++ {
		result, err := s.store.Allow(s.ctx, "ip:1.2.3.4", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(2-i, result.Remaining)
	}
}

func (s *RateLimitSuite) TestBlocksOverLimit() {
	for i := 0; i < 3; i++ {
		_, err := s.store.Allow(s.ctx, "ip:1.2.3.4", 3, time.Minute)
		s.Require().NoError(err)
	}
	result, err := s.store.Allow(s.ctx, "ip:1.2.3.4", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
}

func (s *RateLimitSuite) TestKeysAreIndependent() {
	for i := 0; i < 3; i++ {
		_, err := s.store.Allow(s.ctx, "ip:1.2.3.4", 3, time.Minute)
		s.Require().NoError(err)
	}
	result, err := s.store.Allow(s.ctx, "ip:5.6.7.8", 3, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RateLimitSuite) TestWindowSlides() {
	for i := 0; i < 3; i++ {
		_, err := s.store.Allow(s.ctx, "ip:1.2.3.4", 3, 10*time.Millisecond)
		s.Require().NoError(err)
	}
	time.Sleep(15 * time.Millisecond)

	result, err := s.store.Allow(s.ctx, "ip:1.2.3.4", 3, 10*time.Millisecond)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RateLimitSuite) TestMiddleware() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Middleware(s.store, 2, time.Minute, logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	s.Equal(http.StatusOK, do().Code)
	s.Equal(http.StatusOK, do().Code)

	blocked := do()
	s.Equal(http.StatusTooManyRequests, blocked.Code)
	s.NotEmpty(blocked.Header().Get("Retry-After"))
}
