package app

import (
	"net/http"
	"time"

	"github.com/Black-And-White-Club/frolf-club/pkg/httpx"
	"github.com/Black-And-White-Club/frolf-club/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router builds the HTTP surface: JSON API, websocket feed, health and metrics.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := a.Config.HTTP.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(a.auth.Middleware)

	r.Get("/healthz", a.handleHealth)
	if a.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", observability.MetricsHandler(a.Registry))
	}

	a.auth.Routes(r)
	a.tagHandlers.Routes(r)
	a.puttingHandlers.Routes(r)

	// Websocket upgrades must not run under the request timeout.
	ws := chi.NewRouter()
	ws.Use(middleware.RequestID)
	ws.Handle("/", a.hub)

	root := chi.NewRouter()
	root.Mount("/ws", ws)
	root.Mount("/", r)
	return root
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "store": "memory"}
	if a.DB != nil {
		status["store"] = "postgres"
		if err := a.DB.PingContext(r.Context()); err != nil {
			a.Logger.WarnContext(r.Context(), "Health check failed", observability.CorrelationID(r.Context()))
			status["status"] = "degraded"
			httpx.WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, status)
}
