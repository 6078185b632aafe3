package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/identity-service/pkg/errors"

	"github.com/utafrali/identity-service/internal/auth"
	"github.com/utafrali/identity-service/internal/domain"
	"github.com/utafrali/identity-service/internal/event"
	"github.com/utafrali/identity-service/internal/repository"
	"github.com/utafrali/identity-service/pkg/validator"
)

// Credential failures are deliberately indistinguishable: an unknown
// identifier and a wrong password produce this exact message.
const msgInvalidCredentials = "Invalid username/email or password"

// msgInvalidInput is returned when a login request is structurally incomplete.
const msgInvalidInput = "Invalid input"

// registerMessages maps (field, failed rule) to the message the register
// endpoint returns. Password is absent here: its composition rules are
// evaluated independently by passwordRuleViolations so that every failing
// rule is named, not just the first.
var registerMessages = map[string]map[string]string{
	"FullName": {
		"required": "Full name is required",
	},
	"Username": {
		"required": "Username is required",
	},
	"Email": {
		"required": "Invalid email address",
		"email":    "Invalid email address",
	},
	"ConfirmPassword": {
		"required": "Password confirmation is required",
		"eqfield":  "Passwords do not match",
	},
}

// Password composition rule messages.
const (
	msgPasswordTooShort = "Password must be at least 6 characters long"
	msgPasswordNoUpper  = "Must contain at least one uppercase letter"
	msgPasswordNoDigit  = "Must contain at least one numeric character"
)

const minPasswordLength = 6

// AuthService implements the registration, login, and profile flows.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *auth.JWTManager
	producer   *event.Producer
	logger     *slog.Logger
	opTimeout  time.Duration
}

// NewAuthService creates a new auth service. producer may be nil, in which
// case registration events are not published.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	logger *slog.Logger,
	opTimeout time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		producer:   producer,
		logger:     logger,
		opTimeout:  opTimeout,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	FullName        string `json:"fullName" validate:"required"`
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,upperchar,numericchar"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginInput holds the parameters for user login. Identifier is a username
// or an email address.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User  domain.PublicUser
	Token string
}

// Register validates the input, rejects colliding identifiers, hashes the
// password, and creates the account. Structural validation failures are all
// reported at once; the uniqueness check runs only on structurally valid
// input. The pre-check is advisory: a concurrent registration can still win
// the race, in which case the insert's unique constraint violation is
// reported with the same conflict message.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	ctx, cancel := s.boundOp(ctx)
	defer cancel()

	if err := validator.Validate(input); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			return nil, apperrors.Validation(registerViolations(validationErr, input.Password))
		}
		return nil, apperrors.Internal(err)
	}

	avail, err := s.userRepo.CheckAvailability(ctx, input.Username, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if avail.UsernameTaken || avail.EmailTaken {
		var violations []apperrors.Violation
		if avail.UsernameTaken {
			violations = append(violations, apperrors.Violation{Field: "username", Message: domain.MsgUsernameTaken})
		}
		if avail.EmailTaken {
			violations = append(violations, apperrors.Violation{Field: "email", Message: domain.MsgEmailRegistered})
		}
		return nil, apperrors.Conflict(violations)
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		FullName:     input.FullName,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A conflict here means a concurrent registration won the race
		// after the pre-check; report it exactly like a pre-check hit.
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Publishing is best-effort; registration already committed.
	if s.producer != nil {
		if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish user.registered event",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login authenticates a user by username or email. Unknown identifiers and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	ctx, cancel := s.boundOp(ctx)
	defer cancel()

	if input.Identifier == "" || input.Password == "" {
		return nil, apperrors.InvalidInput(msgInvalidInput)
	}

	user, err := s.userRepo.GetByIdentifier(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("get user by identifier: %w", err)
	}

	ok, err := auth.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		// A stored hash that cannot be parsed is a data problem, but the
		// caller still only learns that the credentials did not match.
		s.logger.ErrorContext(ctx, "password verification failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}
	if !ok {
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}

	token, err := s.jwtManager.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return &LoginResult{
		User:  user.Public(),
		Token: token,
	}, nil
}

// Profile returns the public projection of the user identified by a verified
// token. A token whose account no longer exists yields a not-found error.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.PublicUser, error) {
	ctx, cancel := s.boundOp(ctx)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	public := user.Public()
	return &public, nil
}

// boundOp caps a single flow's store and hashing work so a stalled backend
// fails the request instead of hanging it.
func (s *AuthService) boundOp(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// registerViolations translates validator failures into the wire messages for
// the register endpoint, preserving field declaration order. The validator
// reports only the first failing rule per field, so a failing Password is
// expanded through passwordRuleViolations to name every broken rule.
func registerViolations(err *validator.ValidationError, password string) []apperrors.Violation {
	raw := err.Violations()
	out := make([]apperrors.Violation, 0, len(raw)+2)
	for _, v := range raw {
		if v.Field == "Password" {
			out = append(out, passwordRuleViolations(password)...)
			continue
		}
		msg := v.Message
		if byTag, ok := registerMessages[v.Field]; ok {
			if m, ok := byTag[v.Tag]; ok {
				msg = m
			}
		}
		out = append(out, apperrors.Violation{Field: v.Field, Message: msg})
	}
	return out
}

// passwordRuleViolations evaluates the length, uppercase, and digit rules
// independently. An empty password fails all three.
func passwordRuleViolations(password string) []apperrors.Violation {
	var out []apperrors.Violation
	if utf8.RuneCountInString(password) < minPasswordLength {
		out = append(out, apperrors.Violation{Field: "Password", Message: msgPasswordTooShort})
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		out = append(out, apperrors.Violation{Field: "Password", Message: msgPasswordNoUpper})
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		out = append(out, apperrors.Violation{Field: "Password", Message: msgPasswordNoDigit})
	}
	return out
}
