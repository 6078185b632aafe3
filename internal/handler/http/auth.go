package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/identity-service/pkg/errors"

	"github.com/utafrali/identity-service/internal/service"
	"github.com/utafrali/identity-service/pkg/middleware"
)

// AuthHandler handles HTTP requests for the auth endpoints.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// LoginResponse is the JSON body returned on successful login.
type LoginResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	// Success body is the public projection only; the stored hash and any
	// internal columns never appear on the wire.
	writeJSON(w, http.StatusCreated, user.Public())
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		User:  result.User,
		Token: result.Token,
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// --- Shared response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the uniform error envelope. Every failure on this API is
// `{"error": "<message>"}`, aggregated messages included.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *AuthHandler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		// Unexpected errors never leak internal detail to clients.
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
		)
		writeError(w, status, "Internal server error")
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeError(w, status, appErr.Message)
		return
	}
	writeError(w, status, http.StatusText(status))
}
