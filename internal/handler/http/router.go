package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/identity-service/internal/auth"
	"github.com/utafrali/identity-service/internal/service"
	"github.com/utafrali/identity-service/pkg/health"
	"github.com/utafrali/identity-service/pkg/middleware"
)

// NewRouter creates a chi router with all identity service routes registered.
func NewRouter(
	authService *service.AuthService,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("identity"))
	r.Use(middleware.PrometheusMetrics("identity"))

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token verifier that bridges to the internal JWTManager.
	tokenVerifier := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.Verify(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Role:   claims.Role,
		}, nil
	}

	authHandler := NewAuthHandler(authService, logger)
	r.Route("/api/auth", func(r chi.Router) {
		r.With(ContentTypeJSON).Post("/register", authHandler.Register)
		r.With(ContentTypeJSON).Post("/login", authHandler.Login)
		r.With(middleware.Auth(tokenVerifier)).Get("/me", authHandler.Me)
	})

	return r
}
