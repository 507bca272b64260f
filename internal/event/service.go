package event

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ms-cinema/internal/errs"
	"ms-cinema/internal/event/db"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/metrics"
	"ms-cinema/internal/models"
	"ms-cinema/internal/schedule"
	"ms-cinema/internal/validation"
)

type EventService struct {
	DB     *db.DB
	Logger *logger.Logger
}

func NewEventService(store *db.DB, log *logger.Logger) *EventService {
	return &EventService{DB: store, Logger: log}
}

// ConflictingCinemas returns the cinemas among cinemaIDs that already host
// an event intersecting [start, end), ignoring event excludeID. Unlike the
// show check, lookup failures are returned.
func (s *EventService) ConflictingCinemas(ctx context.Context, start, end time.Time, cinemaIDs []int64, excludeID int64) ([]models.Cinema, error) {
	return s.conflictingCinemas(ctx, s.DB, start, end, cinemaIDs, excludeID)
}

func (s *EventService) conflictingCinemas(ctx context.Context, store *db.DB, start, end time.Time, cinemaIDs []int64, excludeID int64) ([]models.Cinema, error) {
	cinemas, err := store.GetCinemas(ctx, cinemaIDs)
	if err != nil {
		return nil, fmt.Errorf("load cinemas: %w", err)
	}

	candidate := schedule.Interval{Start: start, End: end}
	var conflicting []models.Cinema
	for _, cinema := range cinemas {
		events, err := store.EventsAtCinema(ctx, cinema.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("load events at cinema %d: %w", cinema.ID, err)
		}
		if len(schedule.Conflicts(candidate, events, excludeID)) > 0 {
			conflicting = append(conflicting, cinema)
		}
	}
	return conflicting, nil
}

func (s *EventService) CreateEvent(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	return s.save(ctx, 0, req)
}

// UpdateEvent rewrites an event's name, dates and cinemas. The event's own
// dates never conflict with themselves.
func (s *EventService) UpdateEvent(ctx context.Context, id int64, req models.EventRequest) (*models.Event, error) {
	return s.save(ctx, id, req)
}

func (s *EventService) save(ctx context.Context, id int64, req models.EventRequest) (*models.Event, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	start := req.StartDate.UTC().Truncate(time.Second)
	finish := req.FinishDate.UTC().Truncate(time.Second)
	if _, err := schedule.NewInterval(start, finish); err != nil {
		return nil, errs.Validation("event finish date must be after its start date")
	}
	cinemaIDs := dedupe(req.CinemaIDs)

	event := &models.Event{ID: id, Name: req.Name, StartDate: start, FinishDate: finish}
	err := s.DB.RunInTx(ctx, func(ctx context.Context, tx *db.DB) error {
		if id != 0 {
			if _, err := tx.GetEvent(ctx, id); err != nil {
				if db.IsNotFound(err) {
					return errs.NotFound("event %d not found", id)
				}
				return fmt.Errorf("load event %d: %w", id, err)
			}
		}

		cinemas, err := tx.GetCinemas(ctx, cinemaIDs)
		if err != nil {
			return fmt.Errorf("load cinemas: %w", err)
		}
		if len(cinemas) != len(cinemaIDs) {
			return errs.NotFound("cinemas not found: %s", missing(cinemaIDs, cinemas))
		}

		conflicting, err := s.conflictingCinemas(ctx, tx, start, finish, cinemaIDs, id)
		if err != nil {
			return err
		}
		if len(conflicting) > 0 {
			metrics.ScheduleConflicts.WithLabelValues("event").Inc()
			return errs.Conflict("event overlaps existing events at cinemas: %s", names(conflicting))
		}

		if id == 0 {
			err = tx.CreateEvent(ctx, event)
		} else {
			err = tx.UpdateEvent(ctx, event)
		}
		if err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		return tx.SetEventCinemas(ctx, event.ID, cinemaIDs)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("EVENT", fmt.Sprintf("Saved event %d %q at %d cinema(s)", event.ID, event.Name, len(cinemaIDs)))
	return s.GetEvent(ctx, event.ID)
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.DB.GetEvent(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errs.NotFound("event %d not found", id)
		}
		return nil, fmt.Errorf("load event %d: %w", id, err)
	}
	return event, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func names(cinemas []models.Cinema) string {
	out := make([]string, 0, len(cinemas))
	for _, c := range cinemas {
		out = append(out, c.Name)
	}
	return strings.Join(out, ", ")
}

func missing(ids []int64, found []models.Cinema) string {
	have := make(map[int64]bool, len(found))
	for _, c := range found {
		have[c.ID] = true
	}
	var out []string
	for _, id := range ids {
		if !have[id] {
			out = append(out, fmt.Sprint(id))
		}
	}
	return strings.Join(out, ", ")
}
