package leaguedb

import "errors"

// Repository errors.
//
// ErrNotFound: no document exists for the league ID.
// ErrConflict: an optimistic write lost to a concurrent writer on every attempt.
// ErrNoRowsAffected: a conditional update matched nothing.
var (
	ErrNotFound       = errors.New("league document not found")
	ErrConflict       = errors.New("league document changed concurrently")
	ErrNoRowsAffected = errors.New("no rows affected")
)
