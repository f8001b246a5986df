// Package httpx holds the JSON plumbing shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error   string                      `json:"error"`
	Missing []leaguedomain.MissingEntry `json:"missing,omitempty"`
	Cards   []string                    `json:"pendingCards,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("Failed to encode response", slog.Any("error", err))
	}
}

// DecodeJSON reads a JSON body into v. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return leaguedomain.Invalid("malformed request body: %v", err)
	}
	return nil
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case leaguedomain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, leaguedomain.ErrUnauthorized):
		return http.StatusUnauthorized
	case leaguedomain.IsState(err), errors.Is(err, leaguedb.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, leaguedb.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as a JSON error body. Internal errors are logged and
// their text is not sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := StatusOf(err)
	body := ErrorBody{Error: err.Error()}

	var incomplete *leaguedomain.IncompleteCardError
	if errors.As(err, &incomplete) {
		body.Missing = incomplete.Missing
	}
	var pending *leaguedomain.RoundNotSubmittedError
	if errors.As(err, &pending) {
		body.Cards = pending.CardNames
	}

	if status == http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(r.Context(), "Request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		body = ErrorBody{Error: http.StatusText(status)}
	}
	WriteJSON(w, status, body)
}

// Text writes a plain message with status, for transport-level rejections.
func Text(w http.ResponseWriter, status int, format string, args ...any) {
	http.Error(w, fmt.Sprintf(format, args...), status)
}
