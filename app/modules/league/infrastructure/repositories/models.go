package leaguedb

import (
	"context"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	"github.com/uptrace/bun"
)

// LeagueDocument is the stored form of a league. Version increments on every write
// and backs compare-and-set transactions.
type LeagueDocument struct {
	bun.BaseModel `bun:"table:league_documents,alias:ld"`

	ID        string              `bun:"id,pk,type:varchar(64)"`
	Document  leaguedomain.League `bun:"document,type:jsonb,notnull"`
	Version   int64               `bun:"version,notnull,default:1"`
	CreatedAt time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeAppendModelHook = (*LeagueDocument)(nil)

// BeforeAppendModel stamps timestamps on insert and update.
func (d *LeagueDocument) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		d.UpdatedAt = now
	case *bun.UpdateQuery:
		d.UpdatedAt = now
	}
	return nil
}
