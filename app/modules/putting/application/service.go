package puttingservice

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
	puttingdomain "github.com/Black-And-White-Club/frolf-club/app/modules/putting/domain"
	"github.com/Black-And-White-Club/frolf-club/pkg/observability"
	"go.opentelemetry.io/otel/trace"
)

// Service is the putting league API used by handlers.
type Service interface {
	State(ctx context.Context) (leaguedomain.PuttingLeague, error)
	Leaderboard(ctx context.Context, pool leaguedomain.Pool) ([]puttingdomain.Standing, error)
	CardStatus(ctx context.Context, round int) ([]puttingdomain.CardStatus, error)
	ExportXLSX(ctx context.Context) ([]byte, error)

	AddPlayer(ctx context.Context, name string, pool leaguedomain.Pool) (leaguedomain.PuttingPlayer, error)
	RemovePlayer(ctx context.Context, playerID string) error
	SetPool(ctx context.Context, playerID string, pool leaguedomain.Pool, admin bool) error
	SetCheckedIn(ctx context.Context, playerID string, checkedIn bool) error
	UpdateSettings(ctx context.Context, stations, rounds int) (leaguedomain.PuttingSettings, error)

	CreateCard(ctx context.Context, memberIDs []string) (leaguedomain.Card, error)
	DeleteCard(ctx context.Context, cardID string) error
	RandomizeCards(ctx context.Context) ([]leaguedomain.Card, error)

	BeginRound(ctx context.Context, admin bool) (leaguedomain.PuttingSettings, error)
	SetMade(ctx context.Context, round, station int, playerID string, made int) error
	ClearMade(ctx context.Context, round, station int, playerID string) error
	SubmitCard(ctx context.Context, round int, cardID string) error
	AdvanceRound(ctx context.Context, admin bool) ([]leaguedomain.Card, error)
	Finalize(ctx context.Context, admin bool) ([]puttingdomain.Standing, error)

	SetFinalTotal(ctx context.Context, playerID string, total int, admin bool) error
	ClearAdjustment(ctx context.Context, playerID string, admin bool) error
	Reset(ctx context.Context, admin bool) error
}

// ObjectStore receives archived standings on finalize.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Options tune putting policy.
type Options struct {
	FinalizeRequiresAdmin bool
	ArchivePrefix         string
	LeagueID              string
}

// PuttingService implements the Service interface.
type PuttingService struct {
	store     leaguedb.Store
	archive   ObjectStore
	logger    *slog.Logger
	telemetry observability.Telemetry
	clock     leaguedomain.Clock
	newID     leaguedomain.IDGenerator
	opts      Options

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewPuttingService creates a new PuttingService. archive may be nil.
func NewPuttingService(
	store leaguedb.Store,
	archive ObjectStore,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	clock leaguedomain.Clock,
	newID leaguedomain.IDGenerator,
	rng *rand.Rand,
	opts Options,
) *PuttingService {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = leaguedomain.SystemClock{}
	}
	if newID == nil {
		newID = leaguedomain.NewUUID
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &PuttingService{
		store:   store,
		archive: archive,
		logger:  logger,
		telemetry: observability.Telemetry{
			Service:  "PuttingService",
			Logger:   logger,
			Metrics:  metrics,
			Tracer:   tracer,
			Expected: leaguedomain.IsDomain,
		},
		clock: clock,
		newID: newID,
		opts:  opts,
		rng:   rng,
	}
}

var _ Service = (*PuttingService)(nil)

type transition func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error)

func run[T any](s *PuttingService, ctx context.Context, operationName, identifier string, op observability.Operation[T]) (T, error) {
	return observability.Run(ctx, s.telemetry, operationName, identifier, op)
}

// commit applies t to a fresh read and writes the putting section blind.
func (s *PuttingService) commit(ctx context.Context, t transition) (leaguedomain.PuttingLeague, error) {
	l, err := s.store.Read(ctx)
	if err != nil {
		return leaguedomain.PuttingLeague{}, err
	}
	next, err := t(l.Putting)
	if err != nil {
		return leaguedomain.PuttingLeague{}, err
	}
	saved, err := s.store.Commit(ctx, leaguedomain.PuttingPatch(next))
	if err != nil {
		return leaguedomain.PuttingLeague{}, err
	}
	return saved.Putting, nil
}

// transact applies t under compare-and-set. t may run more than once.
func (s *PuttingService) transact(ctx context.Context, t transition) (leaguedomain.PuttingLeague, error) {
	saved, err := s.store.Transact(ctx, func(l leaguedomain.League) (leaguedomain.Patch, error) {
		next, err := t(l.Putting)
		if err != nil {
			return leaguedomain.Patch{}, err
		}
		return leaguedomain.PuttingPatch(next), nil
	})
	if err != nil {
		return leaguedomain.PuttingLeague{}, err
	}
	return saved.Putting, nil
}

func requireAdmin(admin bool) error {
	if !admin {
		return leaguedomain.ErrUnauthorized
	}
	return nil
}
