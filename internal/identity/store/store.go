package store

import (
	"context"

	"campusconnect/internal/identity/models"
	id "campusconnect/pkg/domain"
)

// UserStore is the persistence boundary for user records. Stores are pure
// I/O: all domain decisions happen inside the validate callbacks, which run
// under the store's locking discipline so a check can never be raced by a
// conflicting write.
//
// Sentinel errors (pkg/platform/sentinel) communicate store facts:
// ErrNotFound for unknown IDs, ErrConflict for uniqueness clashes,
// ErrUnavailable for backing-store failures.
type UserStore interface {
	// Create persists a new user. Fails with ErrConflict when the
	// registration number is already taken.
	Create(ctx context.Context, user *models.User) error

	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByRegNo(ctx context.Context, regNo string) (*models.User, error)

	// FindSummaries resolves the given references to public summaries,
	// preserving the order of refs. Unknown references are skipped.
	FindSummaries(ctx context.Context, refs []id.UserID) ([]models.Summary, error)

	// Search lists every user except excludeID, ordered by creation time.
	// A non-empty query filters by case-insensitive substring match over
	// name, registration number, and email.
	Search(ctx context.Context, excludeID id.UserID, query string) ([]models.Summary, error)

	// Execute atomically runs validate then apply against a single record
	// while holding its lock. If validate returns an error nothing is
	// written and the error is returned unchanged.
	Execute(ctx context.Context, userID id.UserID,
		validate func(u *models.User) error,
		apply func(u *models.User)) (*models.User, error)

	// ExecutePair atomically runs validate then apply against two distinct
	// records. Both mutations commit as a single logical unit: a crash or
	// concurrent writer can never observe one side applied without the
	// other. Implementations must order their lock acquisition by ID to
	// stay deadlock-free.
	ExecutePair(ctx context.Context, firstID, secondID id.UserID,
		validate func(first, second *models.User) error,
		apply func(first, second *models.User)) error
}
