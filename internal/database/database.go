// Package database opens the Postgres handle shared by every store and owns
// the table list used to build a schema without migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ms-cinema/internal/config"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// Models lists every table in creation order. Parents come before the
// tables that reference them.
func Models() []interface{} {
	return []interface{}{
		(*models.User)(nil),
		(*models.Movie)(nil),
		(*models.Format)(nil),
		(*models.Language)(nil),
		(*models.MovieFormat)(nil),
		(*models.MovieLanguage)(nil),
		(*models.Cinema)(nil),
		(*models.Theater)(nil),
		(*models.Snack)(nil),
		(*models.Promotion)(nil),
		(*models.Show)(nil),
		(*models.Seat)(nil),
		(*models.Buy)(nil),
		(*models.Ticket)(nil),
		(*models.SnackLineItem)(nil),
		(*models.PromotionLineItem)(nil),
		(*models.Event)(nil),
		(*models.EventCinema)(nil),
	}
}

// CreateSchema creates every table that does not exist yet. Production
// schemas come from the SQL migrations; this is for tests and local runs.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

// Open connects to Postgres, retrying while the server comes up.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	retries := cfg.ConnRetries
	if retries < 1 {
		retries = 1
	}

	var sqldb *sql.DB
	var err error
	for i := 0; i < retries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, retries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.PingContext(ctx)
			if err == nil {
				break
			}
			sqldb.Close()
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < retries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres after %d attempts: %w", retries, err)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New()), nil
}
