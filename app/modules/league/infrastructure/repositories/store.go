package leaguedb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
)

// DefaultMaxAttempts bounds Transact retries when no limit is configured.
const DefaultMaxAttempts = 5

// BunStore is the Postgres-backed Store for a single league.
type BunStore struct {
	repo        Repository
	leagueID    string
	maxAttempts int
	logger      *slog.Logger
}

// NewBunStore creates a store over repo for leagueID.
func NewBunStore(repo Repository, leagueID string, maxAttempts int, logger *slog.Logger) *BunStore {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BunStore{repo: repo, leagueID: leagueID, maxAttempts: maxAttempts, logger: logger}
}

var _ Store = (*BunStore)(nil)

func (s *BunStore) Ensure(ctx context.Context) (leaguedomain.League, error) {
	doc, err := s.repo.GetDocument(ctx, nil, s.leagueID)
	if err == nil {
		return doc.Document, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return leaguedomain.League{}, err
	}

	created, err := s.repo.InsertDocument(ctx, nil, &LeagueDocument{
		ID:       s.leagueID,
		Document: leaguedomain.NewLeague(s.leagueID),
	})
	if err != nil {
		return leaguedomain.League{}, err
	}
	if created {
		s.logger.InfoContext(ctx, "Created default league document", slog.String("league_id", s.leagueID))
	}

	doc, err = s.repo.GetDocument(ctx, nil, s.leagueID)
	if err != nil {
		return leaguedomain.League{}, err
	}
	return doc.Document, nil
}

func (s *BunStore) Read(ctx context.Context) (leaguedomain.League, error) {
	doc, err := s.repo.GetDocument(ctx, nil, s.leagueID)
	if err != nil {
		return leaguedomain.League{}, err
	}
	return doc.Document, nil
}

func (s *BunStore) Commit(ctx context.Context, patch leaguedomain.Patch) (leaguedomain.League, error) {
	if patch.Empty() {
		return s.Read(ctx)
	}
	doc, err := s.repo.MergeSections(ctx, nil, s.leagueID, patch, -1)
	if err != nil {
		return leaguedomain.League{}, err
	}
	return doc.Document, nil
}

func (s *BunStore) Transact(ctx context.Context, fn TxFunc) (leaguedomain.League, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		doc, err := s.repo.GetDocument(ctx, nil, s.leagueID)
		if err != nil {
			return leaguedomain.League{}, err
		}

		patch, err := fn(doc.Document.Clone())
		if err != nil {
			return leaguedomain.League{}, err
		}
		if patch.Empty() {
			return doc.Document, nil
		}

		updated, err := s.repo.MergeSections(ctx, nil, s.leagueID, patch, doc.Version)
		if err == nil {
			return updated.Document, nil
		}
		if !errors.Is(err, ErrNoRowsAffected) {
			return leaguedomain.League{}, err
		}

		s.logger.WarnContext(ctx, "League document changed during transaction, retrying",
			slog.String("league_id", s.leagueID),
			slog.Int("attempt", attempt),
			slog.Int64("version", doc.Version),
		)
		if err := ctx.Err(); err != nil {
			return leaguedomain.League{}, err
		}
	}
	return leaguedomain.League{}, fmt.Errorf("after %d attempts: %w", s.maxAttempts, ErrConflict)
}
