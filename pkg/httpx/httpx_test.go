package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: leaguedomain.Invalid("bad"), want: http.StatusBadRequest},
		{err: &leaguedomain.IncompleteCardError{}, want: http.StatusBadRequest},
		{err: leaguedomain.Rejected("nope"), want: http.StatusConflict},
		{err: &leaguedomain.RoundNotSubmittedError{CardNames: []string{"Card 1"}}, want: http.StatusConflict},
		{err: leaguedomain.ErrUnauthorized, want: http.StatusUnauthorized},
		{err: fmt.Errorf("Op: %w", leaguedb.ErrConflict), want: http.StatusConflict},
		{err: leaguedb.ErrNotFound, want: http.StatusNotFound},
		{err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestWriteError_Body(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)

	rec := httptest.NewRecorder()
	WriteError(rec, req, nil, &leaguedomain.RoundNotSubmittedError{Round: 1, CardNames: []string{"Card 2"}})
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Card 2"}, body.Cards)

	rec = httptest.NewRecorder()
	WriteError(rec, req, nil, errors.New("password=hunter2"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"a","extra":1}`))
	var v struct {
		Name string `json:"name"`
	}
	err := DecodeJSON(req, &v)
	assert.True(t, leaguedomain.IsValidation(err))
}
