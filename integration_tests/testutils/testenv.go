//go:build integration

package testutils

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"sync"

	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
	leaguemigrations "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories/migrations"
	tagqueue "github.com/Black-And-White-Club/frolf-club/app/modules/tags/infrastructure/queue"
	"github.com/Black-And-White-Club/frolf-club/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// TestEnv holds the shared containers for one test binary.
type TestEnv struct {
	DB      *bun.DB
	DSN     string
	NATSURL string

	containers []testcontainers.Container
}

var (
	sharedEnv *TestEnv
	envOnce   sync.Once
	envErr    error
)

// Env starts Postgres and NATS once per package and migrates the schema.
func Env(ctx context.Context) (*TestEnv, error) {
	envOnce.Do(func() {
		sharedEnv, envErr = newTestEnv(ctx)
	})
	return sharedEnv, envErr
}

func newTestEnv(ctx context.Context) (*TestEnv, error) {
	env := &TestEnv{}

	pg, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}
	env.containers = append(env.containers, pg)
	env.DSN = dsn

	nc, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Terminate(ctx)
		return nil, err
	}
	env.containers = append(env.containers, nc)
	env.NATSURL = natsURL

	env.DB = leaguedb.OpenDB(dsn)
	if err := env.DB.PingContext(ctx); err != nil {
		env.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrator := migrate.NewMigrator(env.DB, leaguemigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		env.Terminate(ctx)
		return nil, fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		env.Terminate(ctx)
		return nil, fmt.Errorf("failed to migrate league schema: %w", err)
	}
	if err := tagqueue.Migrate(ctx, dsn, Logger()); err != nil {
		env.Terminate(ctx)
		return nil, err
	}
	return env, nil
}

// Reset empties the league table between tests.
func (e *TestEnv) Reset(ctx context.Context) error {
	_, err := e.DB.ExecContext(ctx, "TRUNCATE league_documents")
	return err
}

// Terminate stops every container.
func (e *TestEnv) Terminate(ctx context.Context) {
	if e.DB != nil {
		_ = e.DB.Close()
	}
	for _, c := range e.containers {
		if err := c.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate container: %v", err)
		}
	}
}

// Logger discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
