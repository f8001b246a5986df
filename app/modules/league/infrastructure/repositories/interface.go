package leaguedb

import (
	"context"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for league document persistence.
type Repository interface {
	// GetDocument retrieves the stored document for a league.
	GetDocument(ctx context.Context, db bun.IDB, leagueID string) (*LeagueDocument, error)

	// InsertDocument stores doc unless one already exists. Reports whether a row was created.
	InsertDocument(ctx context.Context, db bun.IDB, doc *LeagueDocument) (bool, error)

	// MergeSections overwrites the patch's top-level sections and bumps the version.
	// A non-negative expectedVersion makes the write conditional; a mismatch returns ErrNoRowsAffected.
	MergeSections(ctx context.Context, db bun.IDB, leagueID string, patch leaguedomain.Patch, expectedVersion int64) (*LeagueDocument, error)
}

// TxFunc computes a patch from a fresh snapshot. It may run more than once and must not
// have side effects. Returning an empty patch ends the transaction without writing.
type TxFunc func(snapshot leaguedomain.League) (leaguedomain.Patch, error)

// Store is the league-level persistence contract used by services.
type Store interface {
	// Ensure returns the document, creating the default one first if absent.
	Ensure(ctx context.Context) (leaguedomain.League, error)

	// Read returns the current snapshot.
	Read(ctx context.Context) (leaguedomain.League, error)

	// Commit writes the patch sections unconditionally. Last write wins per section.
	Commit(ctx context.Context, patch leaguedomain.Patch) (leaguedomain.League, error)

	// Transact reads, runs fn and writes its patch only if nobody wrote in between,
	// retrying on conflict.
	Transact(ctx context.Context, fn TxFunc) (leaguedomain.League, error)
}
