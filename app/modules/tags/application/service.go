package tagservice

import (
	"context"
	"log/slog"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
	tagdomain "github.com/Black-And-White-Club/frolf-club/app/modules/tags/domain"
	"github.com/Black-And-White-Club/frolf-club/pkg/observability"
	"go.opentelemetry.io/otel/trace"
)

// Service is the bag tag ladder API used by handlers and the defend sweep.
type Service interface {
	Leaderboard(ctx context.Context) (Leaderboard, error)
	History(ctx context.Context, limit int) ([]leaguedomain.RoundHistoryItem, error)
	PositionChart(ctx context.Context, playerID string) ([]byte, error)

	AddPlayer(ctx context.Context, req AddPlayerRequest) (leaguedomain.Player, error)
	PreviewRound(ctx context.Context, entries []leaguedomain.MatchEntry) (tagdomain.RoundSwaps, error)
	RecordRound(ctx context.Context, req RecordRoundRequest) (RecordedRound, error)
	DeleteLastRound(ctx context.Context, admin bool) error
	DropPlayerToLast(ctx context.Context, playerID string, admin bool) (leaguedomain.MatchResult, error)
	Reset(ctx context.Context, admin bool) error

	ActivateDefend(ctx context.Context, settings tagdomain.DefendSettings, admin bool) (leaguedomain.DefendState, error)
	ApplyDefendSettings(ctx context.Context, settings tagdomain.DefendSettings, admin bool) (leaguedomain.DefendState, error)
	DisableDefend(ctx context.Context, admin bool) (leaguedomain.DefendState, error)
	DropExpired(ctx context.Context, admin bool) (tagdomain.DefendDrop, error)
	ExpiredHolders(ctx context.Context) ([]ExpiredHolder, error)
}

// TagService implements the Service interface.
type TagService struct {
	store     leaguedb.Store
	logger    *slog.Logger
	telemetry observability.Telemetry
	clock     leaguedomain.Clock
	newID     leaguedomain.IDGenerator
}

// NewTagService creates a new TagService.
func NewTagService(
	store leaguedb.Store,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	clock leaguedomain.Clock,
	newID leaguedomain.IDGenerator,
) *TagService {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = leaguedomain.SystemClock{}
	}
	if newID == nil {
		newID = leaguedomain.NewUUID
	}
	return &TagService{
		store:  store,
		logger: logger,
		telemetry: observability.Telemetry{
			Service:  "TagService",
			Logger:   logger,
			Metrics:  metrics,
			Tracer:   tracer,
			Expected: leaguedomain.IsDomain,
		},
		clock: clock,
		newID: newID,
	}
}

var _ Service = (*TagService)(nil)

func requireAdmin(admin bool) error {
	if !admin {
		return leaguedomain.ErrUnauthorized
	}
	return nil
}
