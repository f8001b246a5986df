package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/frolf-club/app/modules/auth"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
	leaguestream "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/stream"
	puttingservice "github.com/Black-And-White-Club/frolf-club/app/modules/putting/application"
	"github.com/Black-And-White-Club/frolf-club/app/modules/putting/infrastructure/archive"
	puttinghandlers "github.com/Black-And-White-Club/frolf-club/app/modules/putting/infrastructure/handlers"
	tagservice "github.com/Black-And-White-Club/frolf-club/app/modules/tags/application"
	taghandlers "github.com/Black-And-White-Club/frolf-club/app/modules/tags/infrastructure/handlers"
	tagqueue "github.com/Black-And-White-Club/frolf-club/app/modules/tags/infrastructure/queue"
	"github.com/Black-And-White-Club/frolf-club/config"
	"github.com/Black-And-White-Club/frolf-club/pkg/eventbus"
	"github.com/Black-And-White-Club/frolf-club/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// App holds every long-lived component of one league server.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  observability.OperationMetrics
	Tracer   trace.Tracer

	DB    *bun.DB
	Bus   eventbus.EventBus
	Store *leaguedb.PublishingStore

	TagService     *tagservice.TagService
	PuttingService *puttingservice.PuttingService

	auth            *auth.Module
	tagHandlers     *taghandlers.TagHandlers
	puttingHandlers *puttinghandlers.PuttingHandlers
	hub             *leaguestream.Hub
	sweep           *tagqueue.Service
}

// New builds the application. Without a Postgres DSN the league lives in memory and
// the defend sweep is disabled; without a NATS URL events stay in process.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.ServiceName, cfg.Observability.Environment)
	}
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: observability.NewRegistry(),
		Tracer:   observability.Tracer(cfg.Observability.ServiceName),
	}

	if cfg.Observability.MetricsEnabled {
		metrics, err := observability.NewPrometheusMetrics(a.Registry, "frolf_club")
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		a.Metrics = metrics
	} else {
		a.Metrics = observability.NewNoop()
	}

	bus, err := eventbus.New(cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	a.Bus = bus

	var store leaguedb.Store
	if cfg.Postgres.DSN != "" {
		a.DB = leaguedb.OpenDB(cfg.Postgres.DSN)
		if err := a.DB.PingContext(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		store = leaguedb.NewBunStore(leaguedb.NewRepository(a.DB), cfg.League.ID, cfg.Store.MaxAttempts, logger)
		logger.Info("Using Postgres league store", slog.String("league_id", cfg.League.ID))
	} else {
		store = leaguedb.NewMemoryStore(cfg.League.ID, cfg.Store.MaxAttempts)
		logger.Warn("DATABASE_URL is not set; league state is kept in memory")
	}
	a.Store = leaguedb.NewPublishingStore(store, bus, cfg.League.ID, logger)
	if _, err := a.Store.Ensure(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load league document: %w", err)
	}

	var objects puttingservice.ObjectStore
	if cfg.Archive.Bucket != "" {
		s3Archive, err := archive.NewS3Archive(ctx, archive.Config{
			Bucket:          cfg.Archive.Bucket,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create standings archive: %w", err)
		}
		objects = s3Archive
	}

	a.TagService = tagservice.NewTagService(a.Store, logger, a.Metrics, a.Tracer, nil, nil)
	a.PuttingService = puttingservice.NewPuttingService(a.Store, objects, logger, a.Metrics, a.Tracer, nil, nil, nil, puttingservice.Options{
		FinalizeRequiresAdmin: cfg.Putting.FinalizeRequiresAdmin,
		ArchivePrefix:         cfg.Archive.Prefix,
		LeagueID:              cfg.League.ID,
	})

	a.auth = auth.NewModule(cfg, logger, a.Tracer)
	a.tagHandlers = taghandlers.NewTagHandlers(a.TagService, logger)
	a.puttingHandlers = puttinghandlers.NewPuttingHandlers(a.PuttingService, logger)
	a.hub = leaguestream.NewHub(a.Store, cfg.HTTP.AllowedOrigins, logger)

	if cfg.Queue.Enabled {
		if cfg.Postgres.DSN == "" {
			logger.Warn("Defend sweep queue needs Postgres; disabled")
		} else {
			worker := tagqueue.NewDefendSweepWorker(a.TagService, bus, logger)
			sweep, err := tagqueue.NewService(ctx, cfg.Postgres.DSN, cfg.League.ID, cfg.Queue.SweepInterval, worker, logger, a.Metrics)
			if err != nil {
				a.Close()
				return nil, err
			}
			a.sweep = sweep
		}
	}

	return a, nil
}

// Close releases the bus and the database.
func (a *App) Close() {
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Logger.Error("Failed to close event bus", slog.Any("error", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("Failed to close database", slog.Any("error", err))
		}
	}
}
