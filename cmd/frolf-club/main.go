package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/frolf-club/app"
	authservice "github.com/Black-And-White-Club/frolf-club/app/modules/auth/application"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
	leaguemigrations "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories/migrations"
	tagqueue "github.com/Black-And-White-Club/frolf-club/app/modules/tags/infrastructure/queue"
	"github.com/Black-And-White-Club/frolf-club/config"
	"github.com/Black-And-White-Club/frolf-club/pkg/observability"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "frolf-club",
		Usage: "disc golf club tag ladder and putting league",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			hashPasswordCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API, websocket feed and defend sweep",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.ServiceName, cfg.Observability.Environment)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info("Graceful shutdown complete")
			return nil
		},
	}
}

func migrateCommand() *cli.Command {
	withMigrator := func(action func(ctx context.Context, m *migrate.Migrator, cfg *config.Config) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.Postgres.DSN == "" {
				return fmt.Errorf("DATABASE_URL is required for migrations")
			}
			db := leaguedb.OpenDB(cfg.Postgres.DSN)
			defer db.Close()
			return action(c.Context, migrate.NewMigrator(db, leaguemigrations.Migrations), cfg)
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrator(func(ctx context.Context, m *migrate.Migrator, _ *config.Config) error {
					return m.Init(ctx)
				}),
			},
			{
				Name:  "up",
				Usage: "apply league and river migrations",
				Action: withMigrator(func(ctx context.Context, m *migrate.Migrator, cfg *config.Config) error {
					if err := m.Init(ctx); err != nil {
						return err
					}
					if err := m.Lock(ctx); err != nil {
						return err
					}
					defer m.Unlock(ctx) //nolint:errcheck

					group, err := m.Migrate(ctx)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Println("No new migrations to run")
					} else {
						fmt.Printf("Migrated to %s\n", group)
					}

					logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.ServiceName, cfg.Observability.Environment)
					return tagqueue.Migrate(ctx, cfg.Postgres.DSN, logger)
				}),
			},
			{
				Name:  "down",
				Usage: "rollback the last migration group",
				Action: withMigrator(func(ctx context.Context, m *migrate.Migrator, _ *config.Config) error {
					group, err := m.Rollback(ctx)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Println("No groups to roll back")
					} else {
						fmt.Printf("Rolled back %s\n", group)
					}
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withMigrator(func(ctx context.Context, m *migrate.Migrator, _ *config.Config) error {
					ms, err := m.MigrationsWithStatus(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("Migrations: %s\n", ms)
					fmt.Printf("Applied: %s\n", ms.Applied())
					fmt.Printf("Unapplied: %s\n", ms.Unapplied())
					return nil
				}),
			},
		},
	}
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "print a bcrypt hash for ADMIN_PASSWORD_HASH",
		ArgsUsage: "<password>",
		Action: func(c *cli.Context) error {
			password := c.Args().First()
			if password == "" {
				return cli.Exit("password argument is required", 1)
			}
			hash, err := authservice.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}
