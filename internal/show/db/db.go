package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ms-cinema/internal/models"

	"github.com/uptrace/bun"
)

// DB runs show and seat queries against a database or an open transaction.
type DB struct {
	Bun bun.IDB
}

func New(idb bun.IDB) *DB {
	return &DB{Bun: idb}
}

// RunInTx runs fn with a DB bound to a new transaction.
func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *DB) error) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &DB{Bun: tx})
	})
}

func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// ---------------- CATALOG ----------------

func (d *DB) GetTheater(ctx context.Context, id int64) (*models.Theater, error) {
	var theater models.Theater
	err := d.Bun.NewSelect().
		Model(&theater).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &theater, nil
}

func (d *DB) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	var movie models.Movie
	err := d.Bun.NewSelect().
		Model(&movie).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (d *DB) MovieSupportsFormat(ctx context.Context, movieID, formatID int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.MovieFormat)(nil)).
		Where("movie_id = ?", movieID).
		Where("format_id = ?", formatID).
		Exists(ctx)
}

func (d *DB) MovieSupportsLanguage(ctx context.Context, movieID, languageID int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.MovieLanguage)(nil)).
		Where("movie_id = ?", movieID).
		Where("language_id = ?", languageID).
		Exists(ctx)
}

// ---------------- SHOWS ----------------

// ShowsInTheater returns the shows of a theater whose slot intersects
// [start, end).
func (d *DB) ShowsInTheater(ctx context.Context, theaterID int64, start, end time.Time) ([]*models.Show, error) {
	var shows []*models.Show
	err := d.Bun.NewSelect().
		Model(&shows).
		Where("theater_id = ?", theaterID).
		Where("start_time < ?", end).
		Where("finish_time > ?", start).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return shows, nil
}

func (d *DB) GetShow(ctx context.Context, id int64) (*models.Show, error) {
	var show models.Show
	err := d.Bun.NewSelect().
		Model(&show).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &show, nil
}

// GetShowDetail loads a show with its catalog relations and seats.
func (d *DB) GetShowDetail(ctx context.Context, id int64) (*models.Show, error) {
	var show models.Show
	err := d.Bun.NewSelect().
		Model(&show).
		Relation("Theater").
		Relation("Movie").
		Relation("Format").
		Relation("Language").
		Relation("Seats", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("number ASC")
		}).
		Where("show.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &show, nil
}

func (d *DB) CreateShow(ctx context.Context, show *models.Show) error {
	_, err := d.Bun.NewInsert().Model(show).Exec(ctx)
	return err
}

func (d *DB) UpdateShow(ctx context.Context, show *models.Show) error {
	_, err := d.Bun.NewUpdate().
		Model(show).
		Column("start_time", "finish_time", "theater_id", "movie_id", "format_id", "language_id").
		WherePK().
		Exec(ctx)
	return err
}

// ---------------- SEATS ----------------

func (d *DB) CreateSeats(ctx context.Context, seats []*models.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().Model(&seats).Exec(ctx)
	return err
}

// ShowHasTickets reports whether any purchase, in any status, holds a ticket
// for the show.
func (d *DB) ShowHasTickets(ctx context.Context, showID int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("show_id = ?", showID).
		Exists(ctx)
}

func (d *DB) DeleteShowSeats(ctx context.Context, showID int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Seat)(nil)).
		Where("show_id = ?", showID).
		Exec(ctx)
	return err
}

func (d *DB) GetSeat(ctx context.Context, id int64) (*models.Seat, error) {
	var seat models.Seat
	err := d.Bun.NewSelect().
		Model(&seat).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// SeatHeldByValidPurchase reports whether a Valid purchase owns a ticket for
// the seat.
func (d *DB) SeatHeldByValidPurchase(ctx context.Context, seatID int64) (bool, error) {
	return d.Bun.NewSelect().
		TableExpr("tickets AS t").
		Join("JOIN buys AS b ON b.id = t.buy_id").
		Where("t.seat_id = ?", seatID).
		Where("b.status = ?", models.PurchaseValid).
		Exists(ctx)
}

// DeleteSeatTickets removes the tickets bound to a seat so it can be sold
// again.
func (d *DB) DeleteSeatTickets(ctx context.Context, seatID int64) (int64, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Ticket)(nil)).
		Where("seat_id = ?", seatID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetSeatStatus moves a seat from one status to another. It reports false
// when the seat was not in the expected status.
func (d *DB) SetSeatStatus(ctx context.Context, seatID int64, from, to models.SeatStatus) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Seat)(nil)).
		Set("status = ?", to).
		Where("id = ?", seatID).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
