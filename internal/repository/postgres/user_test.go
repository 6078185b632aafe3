package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/identity-service/pkg/errors"

	"github.com/utafrali/identity-service/internal/domain"
)

func newUserTestFixture(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewUserRepository(mock)
	return repo, mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:           "2b7e1f0a-9c41-4f3d-8a6b-0d5e1c2f3a4b",
		FullName:     "Alice Smith",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "pbkdf2-sha512$100000$aabb$ccdd",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func fullUserRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "full_name", "username", "email", "password_hash", "role", "created_at", "updated_at",
	}).AddRow(
		u.ID, u.FullName, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt,
	)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestUserRepository_Create_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.FullName, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateUsername(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.FullName, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt).
		WillReturnError(fmt.Errorf(`ERROR: duplicate key value violates unique constraint "users_username_key" (SQLSTATE 23505)`))

	err := repo.Create(context.Background(), u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "expected ErrConflict, got: %v", err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domain.MsgUsernameTaken, appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.FullName, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt).
		WillReturnError(fmt.Errorf(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`))

	err := repo.Create(context.Background(), u)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domain.MsgEmailRegistered, appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_OtherError(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.FullName, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt).
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), u)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByID
// ---------------------------------------------------------------------------

func TestUserRepository_GetByID_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(u.ID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "full_name", "username", "email", "role", "created_at", "updated_at",
		}).AddRow(u.ID, u.FullName, u.Username, u.Email, u.Role, u.CreatedAt, u.UpdatedAt))

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Username, got.Username)
	assert.Empty(t, got.PasswordHash, "GetByID must not load the password hash")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByIdentifier
// ---------------------------------------------------------------------------

func TestUserRepository_GetByIdentifier_ByUsername(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE username = .+ OR email =").
		WithArgs(u.Username).
		WillReturnRows(fullUserRow(u))

	got, err := repo.GetByIdentifier(context.Background(), u.Username)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIdentifier_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE username = .+ OR email =").
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByIdentifier(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// CheckAvailability
// ---------------------------------------------------------------------------

func TestUserRepository_CheckAvailability_BothFree(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT username = .+ email =").
		WithArgs("alice", "alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"username_match", "email_match"}))

	avail, err := repo.CheckAvailability(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)
	assert.False(t, avail.UsernameTaken)
	assert.False(t, avail.EmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CheckAvailability_TakenAcrossRows(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	// Username and email belong to two different existing accounts; both
	// flags must come back set.
	rows := pgxmock.NewRows([]string{"username_match", "email_match"}).
		AddRow(true, false).
		AddRow(false, true)

	mock.ExpectQuery("SELECT username = .+ email =").
		WithArgs("alice", "alice@example.com").
		WillReturnRows(rows)

	avail, err := repo.CheckAvailability(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, avail.UsernameTaken)
	assert.True(t, avail.EmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CheckAvailability_QueryError(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT username = .+ email =").
		WithArgs("alice", "alice@example.com").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.CheckAvailability(context.Background(), "alice", "alice@example.com")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
