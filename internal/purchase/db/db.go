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

func (d *DB) UserExists(ctx context.Context, userID int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("id = ?", userID).
		Exists(ctx)
}

// ---------------- PURCHASES ----------------

func (d *DB) CreateBuy(ctx context.Context, buy *models.Buy) error {
	_, err := d.Bun.NewInsert().Model(buy).Exec(ctx)
	return err
}

// GetPurchase loads a purchase with its tickets (seat, show, movie), snacks
// and promotions.
func (d *DB) GetPurchase(ctx context.Context, id int64) (*models.Buy, error) {
	var buy models.Buy
	err := d.Bun.NewSelect().
		Model(&buy).
		Relation("Tickets", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("ticket.id ASC")
		}).
		Relation("Tickets.Seat").
		Relation("Tickets.Show").
		Relation("Tickets.Show.Movie").
		Relation("Snacks").
		Relation("Snacks.Snack").
		Relation("Promotions").
		Relation("Promotions.Promotion").
		Where("buy.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &buy, nil
}

func (d *DB) GetBuy(ctx context.Context, id int64) (*models.Buy, error) {
	var buy models.Buy
	err := d.Bun.NewSelect().
		Model(&buy).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &buy, nil
}

func (d *DB) ListPurchasesByUser(ctx context.Context, userID int64) ([]*models.Buy, error) {
	buys := make([]*models.Buy, 0)
	err := d.Bun.NewSelect().
		Model(&buys).
		Relation("Tickets").
		Relation("Snacks").
		Relation("Promotions").
		Where("buy.user_id = ?", userID).
		OrderExpr("buy.created_at DESC, buy.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return buys, nil
}

// SetStatus moves a purchase from one status to another. It reports false
// when the purchase was not in the expected status.
func (d *DB) SetStatus(ctx context.Context, id int64, from, to models.PurchaseStatus) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Buy)(nil)).
		Set("status = ?", to).
		Where("id = ?", id).
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

// ExpireFinished marks Expired every Valid purchase holding a ticket for a
// show that finished before now.
func (d *DB) ExpireFinished(ctx context.Context, now time.Time) (int64, error) {
	finished := d.Bun.NewSelect().
		TableExpr("tickets AS t").
		ColumnExpr("t.buy_id").
		Join("JOIN shows AS s ON s.id = t.show_id").
		Where("s.finish_time < ?", now)

	res, err := d.Bun.NewUpdate().
		Model((*models.Buy)(nil)).
		Set("status = ?", models.PurchaseExpired).
		Where("status = ?", models.PurchaseValid).
		Where("id IN (?)", finished).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpcomingTickets returns the tickets of Valid purchases whose show starts
// within [from, to), with purchase, show and movie loaded.
func (d *DB) UpcomingTickets(ctx context.Context, from, to time.Time) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Relation("Show").
		Relation("Show.Movie").
		Relation("Buy").
		Where("buy.status = ?", models.PurchaseValid).
		Where("show.start_time >= ?", from).
		Where("show.start_time < ?", to).
		OrderExpr("ticket.buy_id ASC, ticket.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ---------------- SEATS & TICKETS ----------------

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

// OccupySeat flips a seat from Available to Occupied. It reports false when
// another writer took the seat first.
func (d *DB) OccupySeat(ctx context.Context, seatID int64) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Seat)(nil)).
		Set("status = ?", models.SeatOccupied).
		Where("id = ?", seatID).
		Where("status = ?", models.SeatAvailable).
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

func (d *DB) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	_, err := d.Bun.NewInsert().Model(ticket).Exec(ctx)
	return err
}

// ---------------- CONCESSIONS ----------------

func (d *DB) GetSnack(ctx context.Context, id int64) (*models.Snack, error) {
	var snack models.Snack
	err := d.Bun.NewSelect().
		Model(&snack).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &snack, nil
}

func (d *DB) GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error) {
	var promotion models.Promotion
	err := d.Bun.NewSelect().
		Model(&promotion).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &promotion, nil
}

func (d *DB) CreateSnackLine(ctx context.Context, item *models.SnackLineItem) error {
	_, err := d.Bun.NewInsert().Model(item).Exec(ctx)
	return err
}

func (d *DB) CreatePromotionLine(ctx context.Context, item *models.PromotionLineItem) error {
	_, err := d.Bun.NewInsert().Model(item).Exec(ctx)
	return err
}
