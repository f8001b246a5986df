package leaguedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new league repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetDocument retrieves the stored document for a league.
func (r *Impl) GetDocument(ctx context.Context, db bun.IDB, leagueID string) (*LeagueDocument, error) {
	db = r.resolveDB(db)
	doc := new(LeagueDocument)
	err := db.NewSelect().
		Model(doc).
		Where("id = ?", leagueID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get league document: %w", err)
	}
	doc.Document = doc.Document.Normalize()
	return doc, nil
}

// InsertDocument stores doc unless one already exists.
func (r *Impl) InsertDocument(ctx context.Context, db bun.IDB, doc *LeagueDocument) (bool, error) {
	db = r.resolveDB(db)
	if doc.Version == 0 {
		doc.Version = 1
	}
	result, err := db.NewInsert().
		Model(doc).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert league document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// MergeSections overwrites the patch's top-level keys with jsonb concatenation so
// sections outside the patch keep whatever a concurrent writer stored.
func (r *Impl) MergeSections(ctx context.Context, db bun.IDB, leagueID string, patch leaguedomain.Patch, expectedVersion int64) (*LeagueDocument, error) {
	db = r.resolveDB(db)
	sections, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	doc := new(LeagueDocument)
	q := db.NewUpdate().
		Model(doc).
		Set("document = ld.document || ?::jsonb", string(sections)).
		Set("version = ld.version + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("ld.id = ?", leagueID).
		Returning("*")
	if expectedVersion >= 0 {
		q = q.Where("ld.version = ?", expectedVersion)
	}

	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if expectedVersion >= 0 {
				return nil, ErrNoRowsAffected
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to merge league sections %v: %w", patch.Sections(), err)
	}
	doc.Document = doc.Document.Normalize()
	return doc, nil
}
