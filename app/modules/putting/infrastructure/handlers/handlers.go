package puttinghandlers

import (
	"log/slog"
	"net/http"
	"strconv"

	authhandlers "github.com/Black-And-White-Club/frolf-club/app/modules/auth/infrastructure/handlers"
	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	puttingservice "github.com/Black-And-White-Club/frolf-club/app/modules/putting/application"
	"github.com/Black-And-White-Club/frolf-club/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

// PuttingHandlers exposes the putting league over HTTP.
type PuttingHandlers struct {
	service puttingservice.Service
	logger  *slog.Logger
}

func NewPuttingHandlers(service puttingservice.Service, logger *slog.Logger) *PuttingHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &PuttingHandlers{service: service, logger: logger}
}

// Routes registers /api/putting.
func (h *PuttingHandlers) Routes(r chi.Router) {
	r.Route("/api/putting", func(r chi.Router) {
		r.Get("/", h.GetState)
		r.Get("/leaderboard", h.GetLeaderboard)
		r.Get("/export.xlsx", h.ExportXLSX)
		r.Put("/settings", h.UpdateSettings)

		r.Post("/players", h.AddPlayer)
		r.Delete("/players/{playerID}", h.RemovePlayer)
		r.Put("/players/{playerID}/pool", h.SetPool)
		r.Put("/players/{playerID}/check-in", h.SetCheckedIn)
		r.Put("/players/{playerID}/final-total", h.SetFinalTotal)
		r.Delete("/players/{playerID}/final-total", h.ClearAdjustment)

		r.Get("/cards", h.GetCardStatus)
		r.Post("/cards", h.CreateCard)
		r.Post("/cards/randomize", h.RandomizeCards)
		r.Delete("/cards/{cardID}", h.DeleteCard)

		r.Put("/rounds/{round}/scores", h.SetMade)
		r.Delete("/rounds/{round}/scores", h.ClearMade)
		r.Post("/rounds/{round}/cards/{cardID}/submit", h.SubmitCard)

		r.Post("/begin", h.BeginRound)
		r.Post("/advance", h.AdvanceRound)
		r.Post("/finalize", h.Finalize)
		r.Post("/reset", h.Reset)
	})
}

func (h *PuttingHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteError(w, r, h.logger, err)
}

func roundParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil {
		return 0, leaguedomain.Invalid("round must be an integer")
	}
	return n, nil
}

func (h *PuttingHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status": state.Settings.Status(),
		"league": state,
	})
}

func (h *PuttingHandlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Leaderboard(r.Context(), leaguedomain.Pool(r.URL.Query().Get("pool")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

func (h *PuttingHandlers) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportXLSX(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", puttingservice.XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="putting-standings.xlsx"`)
	_, _ = w.Write(data)
}

type settingsRequest struct {
	StationCount int `json:"stationCount"`
	TotalRounds  int `json:"totalRounds"`
}

func (h *PuttingHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	settings, err := h.service.UpdateSettings(r.Context(), req.StationCount, req.TotalRounds)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, settings)
}

type addPlayerRequest struct {
	Name string            `json:"name"`
	Pool leaguedomain.Pool `json:"pool"`
}

func (h *PuttingHandlers) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.service.AddPlayer(r.Context(), req.Name, req.Pool)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *PuttingHandlers) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemovePlayer(r.Context(), chi.URLParam(r, "playerID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type poolRequest struct {
	Pool leaguedomain.Pool `json:"pool"`
}

func (h *PuttingHandlers) SetPool(w http.ResponseWriter, r *http.Request) {
	var req poolRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.SetPool(r.Context(), chi.URLParam(r, "playerID"), req.Pool, authhandlers.IsAdmin(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkInRequest struct {
	CheckedIn bool `json:"checkedIn"`
}

func (h *PuttingHandlers) SetCheckedIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.SetCheckedIn(r.Context(), chi.URLParam(r, "playerID"), req.CheckedIn); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type finalTotalRequest struct {
	Total int `json:"total"`
}

func (h *PuttingHandlers) SetFinalTotal(w http.ResponseWriter, r *http.Request) {
	var req finalTotalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	err := h.service.SetFinalTotal(r.Context(), chi.URLParam(r, "playerID"), req.Total, authhandlers.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PuttingHandlers) ClearAdjustment(w http.ResponseWriter, r *http.Request) {
	err := h.service.ClearAdjustment(r.Context(), chi.URLParam(r, "playerID"), authhandlers.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PuttingHandlers) GetCardStatus(w http.ResponseWriter, r *http.Request) {
	round := 0
	if v := r.URL.Query().Get("round"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.fail(w, r, leaguedomain.Invalid("round must be an integer"))
			return
		}
		round = n
	}
	statuses, err := h.service.CardStatus(r.Context(), round)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statuses)
}

type createCardRequest struct {
	MemberIDs []string `json:"memberIds"`
}

func (h *PuttingHandlers) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	card, err := h.service.CreateCard(r.Context(), req.MemberIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, card)
}

func (h *PuttingHandlers) RandomizeCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.RandomizeCards(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cards)
}

func (h *PuttingHandlers) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCard(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scoreRequest struct {
	Station  int    `json:"station"`
	PlayerID string `json:"playerId"`
	Made     *int   `json:"made,omitempty"`
}

func (h *PuttingHandlers) SetMade(w http.ResponseWriter, r *http.Request) {
	round, err := roundParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req scoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Made == nil {
		h.fail(w, r, leaguedomain.Invalid("made is required"))
		return
	}
	if err := h.service.SetMade(r.Context(), round, req.Station, req.PlayerID, *req.Made); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PuttingHandlers) ClearMade(w http.ResponseWriter, r *http.Request) {
	round, err := roundParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req scoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.ClearMade(r.Context(), round, req.Station, req.PlayerID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PuttingHandlers) SubmitCard(w http.ResponseWriter, r *http.Request) {
	round, err := roundParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.SubmitCard(r.Context(), round, chi.URLParam(r, "cardID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PuttingHandlers) BeginRound(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.BeginRound(r.Context(), authhandlers.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, settings)
}

func (h *PuttingHandlers) AdvanceRound(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.AdvanceRound(r.Context(), authhandlers.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cards)
}

func (h *PuttingHandlers) Finalize(w http.ResponseWriter, r *http.Request) {
	standings, err := h.service.Finalize(r.Context(), authhandlers.IsAdmin(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, standings)
}

func (h *PuttingHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context(), authhandlers.IsAdmin(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
