package show

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-cinema/internal/errs"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/metrics"
	"ms-cinema/internal/models"
	"ms-cinema/internal/schedule"
	"ms-cinema/internal/show/db"
	"ms-cinema/internal/validation"
)

type ShowService struct {
	DB     *db.DB
	Logger *logger.Logger
}

func NewShowService(store *db.DB, log *logger.Logger) *ShowService {
	return &ShowService{DB: store, Logger: log}
}

// HasOverlap reports whether a show in the theater intersects [start, end),
// ignoring the show excludeID. A failed lookup counts as an overlap so a
// database error can never let a double booking through.
func (s *ShowService) HasOverlap(ctx context.Context, theaterID int64, start, end time.Time, excludeID int64) bool {
	return s.hasOverlap(ctx, s.DB, theaterID, start, end, excludeID)
}

func (s *ShowService) hasOverlap(ctx context.Context, store *db.DB, theaterID int64, start, end time.Time, excludeID int64) bool {
	shows, err := store.ShowsInTheater(ctx, theaterID, start, end)
	if err != nil {
		s.Logger.Error("SCHEDULE", fmt.Sprintf("HasOverlap: lookup failed for theater %d, treating as conflict: %v", theaterID, err))
		return true
	}
	candidate := schedule.Interval{Start: start, End: end}
	return len(schedule.Conflicts(candidate, shows, excludeID)) > 0
}

// CreateShow schedules a show and creates one Available seat per unit of
// theater capacity, all in one transaction.
func (s *ShowService) CreateShow(ctx context.Context, req models.ShowRequest) (*models.Show, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var created *models.Show
	err := s.DB.RunInTx(ctx, func(ctx context.Context, tx *db.DB) error {
		theater, err := tx.GetTheater(ctx, req.TheaterID)
		if err != nil {
			return lookupError(err, "theater %d not found", req.TheaterID)
		}

		show, err := s.prepare(ctx, tx, req, 0)
		if err != nil {
			return err
		}
		if err := tx.CreateShow(ctx, show); err != nil {
			return fmt.Errorf("insert show: %w", err)
		}

		if err := tx.CreateSeats(ctx, seatsFor(show.ID, theater.Capacity)); err != nil {
			return fmt.Errorf("insert seats: %w", err)
		}

		created = show
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("SHOW", fmt.Sprintf("Created show %d in theater %d (%s - %s)",
		created.ID, created.TheaterID, created.StartTime.Format(time.RFC3339), created.FinishTime.Format(time.RFC3339)))
	return s.GetShow(ctx, created.ID)
}

// UpdateShow reschedules a show. The show's own slot is excluded from the
// overlap check. Moving to another theater rebuilds the seat map, which is
// only allowed while no tickets exist for the show.
func (s *ShowService) UpdateShow(ctx context.Context, id int64, req models.ShowRequest) (*models.Show, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	err := s.DB.RunInTx(ctx, func(ctx context.Context, tx *db.DB) error {
		current, err := tx.GetShow(ctx, id)
		if err != nil {
			return lookupError(err, "show %d not found", id)
		}
		theater, err := tx.GetTheater(ctx, req.TheaterID)
		if err != nil {
			return lookupError(err, "theater %d not found", req.TheaterID)
		}

		show, err := s.prepare(ctx, tx, req, id)
		if err != nil {
			return err
		}
		show.ID = id
		if err := tx.UpdateShow(ctx, show); err != nil {
			return fmt.Errorf("update show: %w", err)
		}

		if current.TheaterID == theater.ID {
			return nil
		}
		sold, err := tx.ShowHasTickets(ctx, id)
		if err != nil {
			return fmt.Errorf("check show tickets: %w", err)
		}
		if sold {
			return errs.Conflict("show %d already has tickets and cannot move to theater %d", id, theater.ID)
		}
		if err := tx.DeleteShowSeats(ctx, id); err != nil {
			return fmt.Errorf("delete seats: %w", err)
		}
		if err := tx.CreateSeats(ctx, seatsFor(id, theater.Capacity)); err != nil {
			return fmt.Errorf("insert seats: %w", err)
		}
		s.Logger.Info("SHOW", fmt.Sprintf("Rebuilt %d seat(s) for show %d in theater %d", theater.Capacity, id, theater.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("SHOW", fmt.Sprintf("Updated show %d", id))
	return s.GetShow(ctx, id)
}

// seatsFor lays out seats 1..capacity, all Available.
func seatsFor(showID int64, capacity int) []*models.Seat {
	seats := make([]*models.Seat, 0, capacity)
	for n := 1; n <= capacity; n++ {
		seats = append(seats, &models.Seat{Number: n, Status: models.SeatAvailable, ShowID: showID})
	}
	return seats
}

// prepare checks the movie, its format and language, derives the finish
// time and rejects overlapping slots.
func (s *ShowService) prepare(ctx context.Context, tx *db.DB, req models.ShowRequest, excludeID int64) (*models.Show, error) {
	movie, err := tx.GetMovie(ctx, req.MovieID)
	if err != nil {
		return nil, lookupError(err, "movie %d not found", req.MovieID)
	}

	ok, err := tx.MovieSupportsFormat(ctx, movie.ID, req.FormatID)
	if err != nil {
		return nil, fmt.Errorf("check movie format: %w", err)
	}
	if !ok {
		return nil, errs.Validation("movie %q is not available in format %d", movie.Title, req.FormatID)
	}

	ok, err = tx.MovieSupportsLanguage(ctx, movie.ID, req.LanguageID)
	if err != nil {
		return nil, fmt.Errorf("check movie language: %w", err)
	}
	if !ok {
		return nil, errs.Validation("movie %q is not available in language %d", movie.Title, req.LanguageID)
	}

	start := req.StartTime.UTC().Truncate(time.Second)
	finish := req.FinishTime.UTC().Truncate(time.Second)
	if req.FinishTime.IsZero() {
		finish = start.Add(time.Duration(movie.DurationMinutes) * time.Minute)
	}
	if _, err := schedule.NewInterval(start, finish); err != nil {
		return nil, errs.Validation("show finish time must be after its start time")
	}

	if s.hasOverlap(ctx, tx, req.TheaterID, start, finish, excludeID) {
		metrics.ScheduleConflicts.WithLabelValues("show").Inc()
		return nil, errs.Conflict("show overlaps another show in theater %d", req.TheaterID)
	}

	return &models.Show{
		StartTime:  start,
		FinishTime: finish,
		TheaterID:  req.TheaterID,
		MovieID:    movie.ID,
		FormatID:   req.FormatID,
		LanguageID: req.LanguageID,
	}, nil
}

func (s *ShowService) GetShow(ctx context.Context, id int64) (*models.Show, error) {
	show, err := s.DB.GetShowDetail(ctx, id)
	if err != nil {
		return nil, lookupError(err, "show %d not found", id)
	}
	return show, nil
}

// ReleaseSeat makes an Occupied seat Available again. It refuses while a
// Valid purchase holds a ticket for the seat; tickets left by Expired or
// Cancelled purchases are removed in the same transaction.
func (s *ShowService) ReleaseSeat(ctx context.Context, seatID int64) (*models.Seat, error) {
	var released *models.Seat
	err := s.DB.RunInTx(ctx, func(ctx context.Context, tx *db.DB) error {
		seat, err := tx.GetSeat(ctx, seatID)
		if err != nil {
			return lookupError(err, "seat %d not found", seatID)
		}
		if seat.Status == models.SeatAvailable {
			released = seat
			return nil
		}

		held, err := tx.SeatHeldByValidPurchase(ctx, seatID)
		if err != nil {
			return fmt.Errorf("check seat tickets: %w", err)
		}
		if held {
			return errs.Conflict("seat %d is held by a valid purchase", seatID)
		}

		removed, err := tx.DeleteSeatTickets(ctx, seatID)
		if err != nil {
			return fmt.Errorf("delete stale tickets: %w", err)
		}

		ok, err := tx.SetSeatStatus(ctx, seatID, models.SeatOccupied, models.SeatAvailable)
		if err != nil {
			return fmt.Errorf("release seat: %w", err)
		}
		if !ok {
			return errs.Conflict("seat %d changed while being released", seatID)
		}

		if removed > 0 {
			s.Logger.Info("SHOW", fmt.Sprintf("Removed %d stale ticket(s) for seat %d", removed, seatID))
		}
		seat.Status = models.SeatAvailable
		released = seat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

func lookupError(err error, format string, args ...any) error {
	if db.IsNotFound(err) {
		return errs.NotFound(format, args...)
	}
	return fmt.Errorf("%s: %w", strings.TrimSuffix(fmt.Sprintf(format, args...), " not found"), err)
}
