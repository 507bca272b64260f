package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ms-cinema/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun bun.IDB
}

func New(idb bun.IDB) *DB {
	return &DB{Bun: idb}
}

func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *DB) error) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &DB{Bun: tx})
	})
}

func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (d *DB) GetCinemas(ctx context.Context, ids []int64) ([]models.Cinema, error) {
	var cinemas []models.Cinema
	err := d.Bun.NewSelect().
		Model(&cinemas).
		Where("id IN (?)", bun.In(ids)).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return cinemas, nil
}

// EventsAtCinema returns the events linked to a cinema whose dates
// intersect [start, end).
func (d *DB) EventsAtCinema(ctx context.Context, cinemaID int64, start, end time.Time) ([]*models.Event, error) {
	var events []*models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Join("JOIN event_cinemas AS ec ON ec.event_id = event.id").
		Where("ec.cinema_id = ?", cinemaID).
		Where("event.start_date < ?", end).
		Where("event.finish_date > ?", start).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	err = d.Bun.NewSelect().
		Model(&event.Cinemas).
		Join("JOIN event_cinemas AS ec ON ec.cinema_id = cinema.id").
		Where("ec.event_id = ?", id).
		OrderExpr("cinema.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column("name", "start_date", "finish_date").
		WherePK().
		Exec(ctx)
	return err
}

// SetEventCinemas replaces the cinema links of an event.
func (d *DB) SetEventCinemas(ctx context.Context, eventID int64, cinemaIDs []int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.EventCinema)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return err
	}

	links := make([]models.EventCinema, 0, len(cinemaIDs))
	for _, id := range cinemaIDs {
		links = append(links, models.EventCinema{EventID: eventID, CinemaID: id})
	}
	if len(links) == 0 {
		return nil
	}
	_, err = d.Bun.NewInsert().Model(&links).Exec(ctx)
	return err
}
