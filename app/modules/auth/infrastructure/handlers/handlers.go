package authhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	authservice "github.com/Black-And-White-Club/frolf-club/app/modules/auth/application"
	"github.com/Black-And-White-Club/frolf-club/pkg/httpx"
	"go.opentelemetry.io/otel/trace"
)

const AdminTokenCookie = "admin_token"

// AuthHandlers serves the admin login endpoints.
type AuthHandlers struct {
	service       authservice.Service
	logger        *slog.Logger
	tracer        trace.Tracer
	secureCookies bool
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(service authservice.Service, logger *slog.Logger, tracer trace.Tracer, secureCookies bool) *AuthHandlers {
	return &AuthHandlers{
		service:       service,
		logger:        logger,
		tracer:        tracer,
		secureCookies: secureCookies,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *AuthHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AuthHandlers.HandleLogin")
	defer span.End()

	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	resp, err := h.service.Login(ctx, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) || errors.Is(err, authservice.ErrNotConfigured) {
			httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{Error: "authentication failed"})
			return
		}
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AdminTokenCookie,
		Value:    resp.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Expires:  resp.ExpiresAt,
	})
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession reports whether the caller holds an admin session.
func (h *AuthHandlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"admin": IsAdmin(r.Context())})
}
