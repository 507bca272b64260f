package db

import (
	"context"

	"ms-cinema/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun bun.IDB
}

func New(idb bun.IDB) *DB {
	return &DB{Bun: idb}
}

func (d *DB) ShowExists(ctx context.Context, showID int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Show)(nil)).
		Where("id = ?", showID).
		Exists(ctx)
}

// CountSeats returns how many seats a show has and how many are Occupied.
func (d *DB) CountSeats(ctx context.Context, showID int64) (total, occupied int, err error) {
	total, err = d.Bun.NewSelect().
		Model((*models.Seat)(nil)).
		Where("show_id = ?", showID).
		Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	occupied, err = d.Bun.NewSelect().
		Model((*models.Seat)(nil)).
		Where("show_id = ?", showID).
		Where("status = ?", models.SeatOccupied).
		Count(ctx)
	return total, occupied, err
}

// CountTicketsByStatus groups the tickets of a show by the status of the
// purchase holding them.
func (d *DB) CountTicketsByStatus(ctx context.Context, showID int64) (map[models.PurchaseStatus]int, error) {
	var rows []struct {
		Status models.PurchaseStatus `bun:"status"`
		Count  int                   `bun:"count"`
	}
	err := d.Bun.NewSelect().
		TableExpr("tickets AS ticket").
		Join("JOIN buys AS buy ON buy.id = ticket.buy_id").
		ColumnExpr("buy.status AS status").
		ColumnExpr("COUNT(*) AS count").
		Where("ticket.show_id = ?", showID).
		GroupExpr("buy.status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	counts := make(map[models.PurchaseStatus]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
