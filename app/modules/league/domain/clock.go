package leaguedomain

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time to services. Core functions take time as a parameter.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns T.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// IDGenerator produces identifiers for players, rounds and cards.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string { return uuid.NewString() }
