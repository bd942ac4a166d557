// Command migrate applies, inspects and rolls back the SQL schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"kbomate/internal/config"
	"kbomate/internal/database"
	"kbomate/internal/middleware"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		middleware.Logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

var errUsage = fmt.Errorf("usage: migrate <up|auto|status|down> [version]")

type command struct {
	verb    string
	version int
}

// parseArgs validates the command line before any connection is opened.
func parseArgs(args []string) (command, error) {
	if len(args) < 1 {
		return command{}, errUsage
	}
	cmd := command{verb: strings.ToLower(strings.TrimSpace(args[0]))}
	switch cmd.verb {
	case "up", "auto", "status":
	case "down":
		if len(args) < 2 {
			return command{}, fmt.Errorf("usage: migrate down <version>")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil || v <= 0 {
			return command{}, fmt.Errorf("invalid version %q", args[1])
		}
		cmd.version = v
	default:
		return command{}, errUsage
	}
	return cmd, nil
}

func run() error {
	flag.Parse()
	cmd, err := parseArgs(flag.Args())
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{SkipSchema: true})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	return execute(context.Background(), db, cfg, cmd)
}

func execute(ctx context.Context, db *gorm.DB, cfg *config.Config, cmd command) error {
	log := middleware.Logger

	switch cmd.verb {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Info("sql migrations applied")
	case "auto":
		auto := *cfg
		auto.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, &auto); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Info("automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Info("schema status",
			"mode", status.Mode,
			"env", status.Environment,
			"run_sql", status.RunSQL,
			"run_auto", status.RunAuto,
			"applied", len(status.AppliedVersions),
			"pending", len(status.PendingMigrations))
		for _, m := range status.PendingMigrations {
			log.Info("pending migration", "version", m.Version, "name", m.Name)
		}
	case "down":
		if err := database.RollbackMigration(ctx, db, cmd.version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Info("rolled back migration", "version", cmd.version)
	default:
		return errUsage
	}

	return nil
}
