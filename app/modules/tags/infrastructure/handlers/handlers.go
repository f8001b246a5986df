package taghandlers

import (
	"log/slog"
	"net/http"
	"strconv"

	authhandlers "github.com/Black-And-White-Club/frolf-club/app/modules/auth/infrastructure/handlers"
	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	tagservice "github.com/Black-And-White-Club/frolf-club/app/modules/tags/application"
	tagdomain "github.com/Black-And-White-Club/frolf-club/app/modules/tags/domain"
	"github.com/Black-And-White-Club/frolf-club/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

// TagHandlers exposes the tag ladder over HTTP.
type TagHandlers struct {
	service tagservice.Service
	logger  *slog.Logger
}

func NewTagHandlers(service tagservice.Service, logger *slog.Logger) *TagHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagHandlers{service: service, logger: logger}
}

// Routes registers /api/tags.
func (h *TagHandlers) Routes(r chi.Router) {
	r.Route("/api/tags", func(r chi.Router) {
		r.Get("/leaderboard", h.GetLeaderboard)
		r.Get("/history", h.GetHistory)
		r.Get("/players/{playerID}/chart.png", h.GetPositionChart)
		r.Post("/players", h.AddPlayer)
		r.Post("/players/{playerID}/drop", h.DropPlayerToLast)

		r.Post("/rounds/preview", h.PreviewRound)
		r.Post("/rounds", h.RecordRound)
		r.Delete("/rounds/last", h.DeleteLastRound)
		r.Post("/reset", h.Reset)

		r.Route("/defend", func(r chi.Router) {
			r.Get("/expired", h.GetExpired)
			r.Post("/activate", h.ActivateDefend)
			r.Put("/settings", h.ApplyDefendSettings)
			r.Post("/disable", h.DisableDefend)
			r.Post("/drop-expired", h.DropExpired)
		})
	})
}

func (h *TagHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteError(w, r, h.logger, err)
}

func (h *TagHandlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.Leaderboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lb)
}

func (h *TagHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.fail(w, r, leaguedomain.Invalid("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	items, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *TagHandlers) GetPositionChart(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.PositionChart(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (h *TagHandlers) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var req tagservice.AddPlayerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.service.AddPlayer(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *TagHandlers) DropPlayerToLast(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.DropPlayerToLast(r.Context(), chi.URLParam(r, "playerID"), authhandlers.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

type previewRequest struct {
	Entries []leaguedomain.MatchEntry `json:"entries"`
}

func (h *TagHandlers) PreviewRound(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	swaps, err := h.service.PreviewRound(r.Context(), req.Entries)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, swaps)
}

func (h *TagHandlers) RecordRound(w http.ResponseWriter, r *http.Request) {
	var req tagservice.RecordRoundRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.service.RecordRound(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rec)
}

func (h *TagHandlers) DeleteLastRound(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLastRound(r.Context(), authhandlers.IsAdmin(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TagHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context(), authhandlers.IsAdmin(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TagHandlers) GetExpired(w http.ResponseWriter, r *http.Request) {
	holders, err := h.service.ExpiredHolders(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, holders)
}

func (h *TagHandlers) ActivateDefend(w http.ResponseWriter, r *http.Request) {
	var settings tagdomain.DefendSettings
	if err := httpx.DecodeJSON(r, &settings); err != nil {
		h.fail(w, r, err)
		return
	}
	state, err := h.service.ActivateDefend(r.Context(), settings, authhandlers.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

func (h *TagHandlers) ApplyDefendSettings(w http.ResponseWriter, r *http.Request) {
	var settings tagdomain.DefendSettings
	if err := httpx.DecodeJSON(r, &settings); err != nil {
		h.fail(w, r, err)
		return
	}
	state, err := h.service.ApplyDefendSettings(r.Context(), settings, authhandlers.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

func (h *TagHandlers) DisableDefend(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.DisableDefend(r.Context(), authhandlers.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

func (h *TagHandlers) DropExpired(w http.ResponseWriter, r *http.Request) {
	drop, err := h.service.DropExpired(r.Context(), authhandlers.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, drop)
}
