package auth

import (
	"log/slog"
	"net/http"

	authservice "github.com/Black-And-White-Club/frolf-club/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/frolf-club/app/modules/auth/infrastructure/handlers"
	"github.com/Black-And-White-Club/frolf-club/config"
	"github.com/Black-And-White-Club/frolf-club/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Module wires admin login and the admin-resolving middleware.
type Module struct {
	service  authservice.Service
	handlers *authhandlers.AuthHandlers
	limiter  *authhandlers.IPRateLimiter
}

// NewModule creates a new auth module.
func NewModule(cfg *config.Config, logger *slog.Logger, tracer trace.Tracer) *Module {
	tokens := jwt.NewService(cfg.Admin.JWTSecret, cfg.League.ID, cfg.Admin.TokenTTL)
	service := authservice.NewService(tokens, cfg.Admin.PasswordHash, logger, tracer)

	if cfg.Admin.PasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH is not set; admin login is disabled")
	}

	secureCookies := cfg.Observability.Environment != "development"
	return &Module{
		service:  service,
		handlers: authhandlers.NewAuthHandlers(service, logger, tracer, secureCookies),
		limiter:  authhandlers.NewIPRateLimiter(rate.Limit(cfg.Admin.LoginRateLimit), cfg.Admin.LoginBurst),
	}
}

// Middleware resolves the admin flag onto every request context.
func (m *Module) Middleware(next http.Handler) http.Handler {
	return m.handlers.AdminMiddleware(next)
}

// Routes registers /api/auth.
func (m *Module) Routes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.With(authhandlers.RateLimitMiddleware(m.limiter)).Post("/login", m.handlers.HandleLogin)
		r.Post("/logout", m.handlers.HandleLogout)
		r.Get("/session", m.handlers.HandleSession)
	})
}
