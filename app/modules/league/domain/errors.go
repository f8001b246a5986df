package leaguedomain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned when an admin-gated action is attempted without authorization.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError is a user-correctable input problem. The message is shown verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StateError is an action attempted in the wrong lifecycle state.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

// Rejected builds a StateError.
func Rejected(format string, args ...any) error {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}

// MissingEntry is a (station, player) pair without a recorded score.
type MissingEntry struct {
	Station  int    `json:"station"`
	PlayerID string `json:"playerId"`
}

// IncompleteCardError is returned when a card is submitted with unrecorded scores.
type IncompleteCardError struct {
	CardName string
	Missing  []MissingEntry
}

func (e *IncompleteCardError) Error() string {
	return fmt.Sprintf("%s is incomplete: %d score(s) missing", e.CardName, len(e.Missing))
}

// Unwrap lets errors.As match the error as a *ValidationError.
func (e *IncompleteCardError) Unwrap() error {
	return &ValidationError{Msg: e.Error()}
}

// RoundNotSubmittedError is returned when a round cannot advance because cards are pending.
type RoundNotSubmittedError struct {
	Round     int
	CardNames []string
}

func (e *RoundNotSubmittedError) Error() string {
	if len(e.CardNames) == 0 {
		return fmt.Sprintf("round %d has no cards", e.Round)
	}
	return fmt.Sprintf("round %d is waiting on: %s", e.Round, strings.Join(e.CardNames, ", "))
}

// Unwrap lets errors.As match the error as a *StateError.
func (e *RoundNotSubmittedError) Unwrap() error {
	return &StateError{Msg: e.Error()}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsState reports whether err is a state-guard violation.
func IsState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// IsDomain reports whether err was produced by a rule check rather than infrastructure.
func IsDomain(err error) bool {
	return IsValidation(err) || IsState(err) || errors.Is(err, ErrUnauthorized)
}
