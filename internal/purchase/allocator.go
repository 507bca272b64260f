package purchase

import (
	"context"
	"fmt"

	"ms-cinema/internal/errs"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/purchase/db"
)

// Allocator turns requested seats into tickets inside the caller's
// transaction. Any error it returns must abort that transaction.
type Allocator struct {
	Logger *logger.Logger
}

func NewAllocator(log *logger.Logger) *Allocator {
	return &Allocator{Logger: log}
}

// Allocate binds each seat to buy. The seat's show becomes the ticket's
// show, and the seat is flipped to Occupied with a conditional update so a
// concurrent purchase cannot take it between the read and the write.
func (a *Allocator) Allocate(ctx context.Context, tx *db.DB, buy *models.Buy, seatIDs []int64) ([]*models.Ticket, error) {
	tickets := make([]*models.Ticket, 0, len(seatIDs))
	for _, seatID := range seatIDs {
		seat, err := tx.GetSeat(ctx, seatID)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, errs.NotFound("seat %d not found", seatID)
			}
			return nil, fmt.Errorf("load seat %d: %w", seatID, err)
		}
		if seat.Status == models.SeatOccupied {
			return nil, errs.Conflict("seat %d is already occupied", seat.ID)
		}

		ticket := &models.Ticket{ShowID: seat.ShowID, SeatID: seat.ID, BuyID: buy.ID}
		if err := tx.CreateTicket(ctx, ticket); err != nil {
			return nil, fmt.Errorf("create ticket for seat %d: %w", seat.ID, err)
		}

		ok, err := tx.OccupySeat(ctx, seat.ID)
		if err != nil {
			return nil, fmt.Errorf("occupy seat %d: %w", seat.ID, err)
		}
		if !ok {
			return nil, errs.Conflict("seat %d is already occupied", seat.ID)
		}

		a.Logger.Debug("PURCHASE", fmt.Sprintf("Seat %d (show %d) allocated to purchase %d", seat.ID, seat.ShowID, buy.ID))
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}
