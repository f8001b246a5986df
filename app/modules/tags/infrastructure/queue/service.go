package tagqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/frolf-club/pkg/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

const queueName = "tags"

// Service runs the periodic defend sweep on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.OperationMetrics
}

func newPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// NewService creates a River client that enqueues a DefendSweepJob for leagueID every interval.
func NewService(
	ctx context.Context,
	dsn string,
	leagueID string,
	interval time.Duration,
	worker *DefendSweepWorker,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
) (*Service, error) {
	logger = logger.With(
		slog.String("component", "river_queue"),
		slog.String("queue", queueName),
	)
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	pool, err := newPool(ctx, dsn)
	if err != nil {
		logger.Error("Failed to connect River pool", slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, worker)

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			queueName: {MaxWorkers: 1},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(interval),
				func() (river.JobArgs, *river.InsertOpts) {
					return DefendSweepJob{LeagueID: leagueID}, &river.InsertOpts{
						Queue:      queueName,
						UniqueOpts: river.UniqueOpts{ByArgs: true, ByPeriod: interval},
					}
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	})
	if err != nil {
		pool.Close()
		logger.Error("Failed to create River client", slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	logger.Info("Defend sweep queue initialized", slog.Duration("interval", interval))
	return &Service{client: client, pool: pool, logger: logger, metrics: metrics}, nil
}

// Run starts the client and blocks until ctx ends, then stops it.
func (s *Service) Run(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Defend sweep queue started")

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	defer s.pool.Close()
	if err := s.client.Stop(stopCtx); err != nil {
		s.logger.Error("Failed to stop River client", slog.Any("error", err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Defend sweep queue stopped")
	return nil
}

// Migrate applies River's schema migrations.
func Migrate(ctx context.Context, dsn string, logger *slog.Logger) error {
	pool, err := newPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("failed to run river migrations: %w", err)
	}
	for _, v := range res.Versions {
		logger.Info("Applied river migration", slog.Int("version", v.Version))
	}
	return nil
}
