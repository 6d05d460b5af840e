package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/asaskevich/govalidator"

	"campusconnect/internal/audit"
	"campusconnect/internal/identity/models"
	"campusconnect/internal/identity/store"
	"campusconnect/internal/platform/metrics"
	"campusconnect/internal/whitelist"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/platform/sentinel"
	"campusconnect/pkg/requestcontext"
	"campusconnect/pkg/secrets"
)

// TokenIssuer signs access tokens after a successful login.
type TokenIssuer interface {
	Issue(userID id.UserID, regNo string) (string, error)
}

// AuditPublisher records account lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service orchestrates registration, login, and member lookups.
type Service struct {
	users   store.UserStore
	roster  whitelist.Roster
	tokens  TokenIssuer
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
}

func New(users store.UserStore, roster whitelist.Roster, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{users: users, roster: roster, tokens: tokens, logger: slog.Default()}
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

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	FirstName       string
	LastName        string
	RegNo           string
	Email           string
	Mobile          string
	Password        string
	ConfirmPassword string
}

func (in RegisterInput) validate() error {
	if in.FirstName == "" || in.LastName == "" || in.RegNo == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "all fields are required")
	}
	if !govalidator.IsEmail(in.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid email")
	}
	if !govalidator.StringLength(in.Password, "8", "72") {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be between 8 and 72 characters")
	}
	if in.Password != in.ConfirmPassword {
		return dErrors.New(dErrors.CodeInvalidInput, "passwords do not match")
	}
	return nil
}

// Register creates an account for a whitelisted registration number.
// Whitelist membership is checked exactly once, here; it is never
// re-validated after the account exists.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	regNo := strings.TrimSpace(in.RegNo)
	eligible, err := s.roster.Contains(ctx, regNo)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "whitelist unavailable")
	}
	if !eligible {
		return nil, dErrors.New(dErrors.CodeForbidden, "registration number is not eligible")
	}

	hash, err := secrets.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName)
	user, err := models.NewUser(id.NewUserID(), name, regNo, in.Email, in.Mobile, hash, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "user already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Actor: user.ID, Action: audit.ActionUserRegistered, Subject: user.RegNo})
	s.metrics.IncrementUsersRegistered()
	return user, nil
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string
	User  models.Summary
}

// Login verifies credentials by registration number and issues a token.
// Unknown regNo and wrong password both return the same unauthorized error
// so the response does not reveal which field was wrong.
func (s *Service) Login(ctx context.Context, regNo, password string) (*LoginResult, error) {
	if regNo == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "registration number and password are required")
	}

	user, err := s.users.FindByRegNo(ctx, regNo)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid registration number or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load user")
	}

	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid registration number or password")
		}
		return nil, err
	}

	tokenString, err := s.tokens.Issue(user.ID, user.RegNo)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.emit(ctx, audit.Event{Actor: user.ID, Action: audit.ActionUserLoggedIn})
	return &LoginResult{Token: tokenString, User: user.Summary()}, nil
}

// GetByRegNo fetches a member's public profile.
func (s *Service) GetByRegNo(ctx context.Context, regNo string) (*models.Summary, error) {
	user, err := s.users.FindByRegNo(ctx, regNo)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load user")
	}
	summary := user.Summary()
	return &summary, nil
}

// Search lists every member except the caller, optionally filtered by a
// case-insensitive substring over name, registration number, and email.
func (s *Service) Search(ctx context.Context, me id.UserID, query string) ([]models.Summary, error) {
	summaries, err := s.users.Search(ctx, me, strings.TrimSpace(query))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to search users")
	}
	return summaries, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Emit(ctx, event)
	}
}
