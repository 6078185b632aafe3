package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/utafrali/identity-service/pkg/errors"

	"github.com/utafrali/identity-service/internal/domain"
	"github.com/utafrali/identity-service/internal/repository"
	"github.com/utafrali/identity-service/pkg/database"
)

// Unique constraint names from the users table migration. Insert failures are
// attributed to a field by matching these in the error text.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database. A unique constraint violation
// is surfaced as a conflict attributed to whichever identifier collided.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, full_name, username, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.FullName,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return conflictFromViolation(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID. The password hash is deliberately
// left out of the select list; callers of this path never verify credentials.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, full_name, username, email, role, created_at, updated_at
		FROM users
		WHERE id = $1`

	var u domain.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.FullName,
		&u.Username,
		&u.Email,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

// GetByIdentifier retrieves a user by username or email, password hash
// included, for login verification.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	query := `
		SELECT id, full_name, username, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE username = $1 OR email = $1`

	var u domain.User
	err := r.db.QueryRow(ctx, query, identifier).Scan(
		&u.ID,
		&u.FullName,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

// CheckAvailability reports which of the given identifiers are already taken.
// Username and email may match different rows, so the flags are OR-ed across
// every matching row rather than read off the first one.
func (r *UserRepository) CheckAvailability(ctx context.Context, username, email string) (repository.Availability, error) {
	query := `
		SELECT username = $1, email = $2
		FROM users
		WHERE username = $1 OR email = $2`

	rows, err := r.db.Query(ctx, query, username, email)
	if err != nil {
		return repository.Availability{}, fmt.Errorf("check availability: %w", err)
	}
	defer rows.Close()

	var avail repository.Availability
	for rows.Next() {
		var usernameMatch, emailMatch bool
		if err := rows.Scan(&usernameMatch, &emailMatch); err != nil {
			return repository.Availability{}, fmt.Errorf("scan availability row: %w", err)
		}
		avail.UsernameTaken = avail.UsernameTaken || usernameMatch
		avail.EmailTaken = avail.EmailTaken || emailMatch
	}

	if err := rows.Err(); err != nil {
		return repository.Availability{}, fmt.Errorf("iterate availability rows: %w", err)
	}

	return avail, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// conflictFromViolation maps a unique violation to the conflict message for
// the identifier that collided. An unattributable violation reports both.
func conflictFromViolation(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, usernameConstraint):
		return apperrors.Conflict([]apperrors.Violation{
			{Field: "username", Message: domain.MsgUsernameTaken},
		})
	case strings.Contains(msg, emailConstraint):
		return apperrors.Conflict([]apperrors.Violation{
			{Field: "email", Message: domain.MsgEmailRegistered},
		})
	default:
		return apperrors.Conflict([]apperrors.Violation{
			{Field: "username", Message: domain.MsgUsernameTaken},
			{Field: "email", Message: domain.MsgEmailRegistered},
		})
	}
}
