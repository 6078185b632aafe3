package repository

import (
	"context"

	"github.com/utafrali/identity-service/internal/domain"
)

// Availability reports which identifiers of a prospective registration are
// already claimed by an existing account.
type Availability struct {
	UsernameTaken bool
	EmailTaken    bool
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store. The user's password hash
	// must already be computed; the store never sees cleartext credentials.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier. The returned
	// user carries no password hash.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByIdentifier retrieves a user by username or email address, with
	// the stored password hash included for credential verification.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)

	// CheckAvailability reports whether the given username or email is
	// already taken. The result is advisory: a concurrent registration can
	// still claim either identifier before Create runs, and the database
	// unique constraints remain the final arbiter.
	CheckAvailability(ctx context.Context, username, email string) (Availability, error)
}
