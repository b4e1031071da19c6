package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotlist/internal/repositories"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded example config to the path given by --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Fill in [credentials.spotify] or set %s and %s to use the lookup commands.\n", shared.EnvClientID, shared.EnvClientSecret)
	return nil
}

// openDatabase opens the configured session database and brings its schema up to date.
func (r *Runner) openDatabase(ctx context.Context) (*sql.DB, error) {
	r.logger.Info("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	return nil
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(ctx, r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(ctx, db); err != nil {
		if errors.Is(err, shared.ErrNoMigrations) {
			r.writePlain("Nothing to roll back\n")
			return nil
		}
		return err
	}

	r.writePlain("✓ Rolled back the latest migration\n")
	return nil
}

// SetupPrune deletes sessions idle for longer than --older-than from the session database.
func (r *Runner) SetupPrune(ctx context.Context, cmd *cli.Command) error {
	age := cmd.Duration("older-than")
	if age <= 0 {
		return fmt.Errorf("%w: --older-than must be positive", shared.ErrValidation)
	}

	db, err := r.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := repositories.NewSessionRepository(db).PruneBefore(ctx, time.Now().UTC().Add(-age))
	if err != nil {
		return err
	}

	r.logger.Info("pruned sessions", "count", n, "older_than", age)
	r.writePlain("✓ Deleted %d session(s)\n", n)
	return nil
}
