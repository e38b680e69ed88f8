package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/config"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/gormdb"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/migrations"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/server"
)

var version = "dev"

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Usage:   "Catalog admin: categories, genres, cast members and videos",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Sources: cli.EnvVars(config.EnvPrefix + "CONFIG"),
				Usage:   "YAML config file (optional; CATALOG_* env vars override it)",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			checkConfigCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the message consumers and integration event relay until interrupted",
		Action: func(ctx context.Context, c *cli.Command) error {
			s := catalog.NewServer(c.String("config"))
			engine := server.NewEngine(s,
				server.WithVersion(version),
				server.WithBeforeStart(func(ctx context.Context) error {
					logging.GetLogger().Info(ctx, "catalog ready")
					return nil
				}))
			return engine.Start(ctx)
		},
	}
}

func migrateCommand() *cli.Command {
	run := func(step func(ctx context.Context, db *sql.DB) error) cli.ActionFunc {
		return func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
			return withSQL(ctx, cfg, logger, func(db *sql.DB) error {
				if step != nil {
					if err := step(ctx, db); err != nil {
						return err
					}
				}
				v, err := migrations.Version(ctx, db)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(c.Root().Writer, "schema version: %d\n", v)
				return err
			})
		}
	}
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{Name: "up", Usage: "Apply all pending migrations", Action: run(migrations.Up)},
			{Name: "down", Usage: "Roll back the latest migration", Action: run(migrations.Down)},
			{Name: "status", Usage: "Print the current schema version", Action: run(nil)},
		},
	}
}

// withSQL 打开数据库但不自动迁移
func withSQL(ctx context.Context, cfg config.Config, logger logging.Logger, fn func(db *sql.DB) error) error {
	cfg.Database.AutoMigrate = false
	db, err := catalog.OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = gormdb.Close(db) }()
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return fn(sqlDB)
}

func checkConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-config",
		Usage: "Validate the effective configuration and print it as YAML",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			cfg.Events.Redis.Password = redact(cfg.Events.Redis.Password)
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(c.Root().Writer, string(out))
			return err
		},
	}
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "******"
}
