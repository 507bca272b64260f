package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"ms-cinema/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

// SchemaVersion is the last migration that only creates tables. Later
// versions load sample data.
const SchemaVersion uint = 1

// Runner applies the embedded migrations to a Postgres database. It takes
// ownership of the handle: Close closes it.
type Runner struct {
	m   *migrate.Migrate
	log *logger.Logger
}

func Open(db *sql.DB, log *logger.Logger) (*Runner, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	source, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("embedded migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("build migrator: %w", err)
	}
	return &Runner{m: m, log: log}, nil
}

// apply runs step and treats "nothing to do" as success.
func apply(op string, step func() error) error {
	if err := step(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	return nil
}

// Sync is the startup path. It clears a dirty flag left by a crashed run,
// then migrates to the latest version when seed is set and to SchemaVersion
// otherwise. It never moves the schema down.
func (r *Runner) Sync(seed bool) error {
	current, dirty, err := r.Version()
	if err != nil {
		return err
	}
	if dirty {
		r.log.Warn("MIGRATE", fmt.Sprintf("Version %d is dirty, forcing it clean", current))
		if err := r.m.Force(int(current)); err != nil {
			return fmt.Errorf("migrate force %d: %w", current, err)
		}
	}

	switch {
	case seed:
		r.log.Info("MIGRATE", "Applying schema and sample data")
		err = r.Up()
	case current < SchemaVersion:
		r.log.Info("MIGRATE", "Applying schema")
		err = r.To(SchemaVersion)
	}
	if err != nil {
		return err
	}

	current, _, err = r.Version()
	if err != nil {
		return err
	}
	r.log.Info("MIGRATE", fmt.Sprintf("Schema at version %d", current))
	return nil
}

func (r *Runner) Up() error {
	return apply("up", r.m.Up)
}

func (r *Runner) Down() error {
	return apply("down", r.m.Down)
}

func (r *Runner) To(version uint) error {
	return apply(fmt.Sprintf("to %d", version), func() error { return r.m.Migrate(version) })
}

// Version reports the applied version; 0 when nothing has run.
func (r *Runner) Version() (uint, bool, error) {
	version, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrate version: %w", err)
	}
	return version, dirty, nil
}

func (r *Runner) Close() error {
	srcErr, dbErr := r.m.Close()
	return errors.Join(srcErr, dbErr)
}
