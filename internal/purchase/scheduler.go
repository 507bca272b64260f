package purchase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"ms-cinema/internal/kafka"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/metrics"
	"ms-cinema/internal/models"
	"ms-cinema/internal/purchase/db"
	"ms-cinema/internal/utils"
)

// ReminderMarker remembers which purchases were already reminded.
type ReminderMarker interface {
	MarkReminderSent(ctx context.Context, purchaseID int64, ttl time.Duration) (bool, error)
}

// memoryMarker is the single-instance fallback when Redis is disabled.
type memoryMarker struct {
	mu   sync.Mutex
	sent map[int64]time.Time
}

func newMemoryMarker() *memoryMarker {
	return &memoryMarker{sent: make(map[int64]time.Time)}
}

func (m *memoryMarker) MarkReminderSent(_ context.Context, purchaseID int64, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if until, ok := m.sent[purchaseID]; ok && now.Before(until) {
		return false, nil
	}
	m.sent[purchaseID] = now.Add(ttl)
	return true, nil
}

// Scheduler runs the expiration sweep and the show reminder pass on a fixed
// interval until its context is cancelled.
type Scheduler struct {
	Sweeper   *Sweeper
	DB        *db.DB
	Marker    ReminderMarker
	Publisher kafka.Publisher
	Logger    *logger.Logger
	Interval  time.Duration
	Window    time.Duration
	Clock     utils.Clock
}

// NewScheduler builds a scheduler. A nil marker keeps reminder
// de-duplication in memory.
func NewScheduler(sweeper *Sweeper, store *db.DB, marker ReminderMarker, publisher kafka.Publisher, log *logger.Logger, interval, window time.Duration) *Scheduler {
	if marker == nil {
		marker = newMemoryMarker()
	}
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	return &Scheduler{
		Sweeper:   sweeper,
		DB:        store,
		Marker:    marker,
		Publisher: publisher,
		Logger:    log,
		Interval:  interval,
		Window:    window,
		Clock:     utils.SystemClock,
	}
}

// Run blocks, running one pass immediately and then one per interval.
func (s *Scheduler) Run(ctx context.Context) {
	s.Logger.LogProcess("SCHEDULER", fmt.Sprintf("started: sweep every %s, reminders %s ahead", s.Interval, s.Window))

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.Logger.LogProcess("SCHEDULER", "stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a sweep followed by a reminder pass. Failures are logged
// and retried on the next tick.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := s.Clock()
	if _, err := s.Sweeper.SweepExpired(ctx, now); err != nil {
		s.Logger.Error("SCHEDULER", fmt.Sprintf("Sweep failed: %v", err))
	}
	if _, err := s.SendReminders(ctx, now); err != nil {
		s.Logger.Error("SCHEDULER", fmt.Sprintf("Reminder pass failed: %v", err))
	}
}

// SendReminders publishes one reminder per Valid purchase with a show
// starting within the window after now. It returns how many were sent.
func (s *Scheduler) SendReminders(ctx context.Context, now time.Time) (int, error) {
	if s.Window <= 0 {
		return 0, nil
	}

	tickets, err := s.DB.UpcomingTickets(ctx, now, now.Add(s.Window))
	if err != nil {
		return 0, fmt.Errorf("load upcoming tickets: %w", err)
	}

	sent := 0
	seen := make(map[int64]bool)
	for _, t := range tickets {
		if seen[t.BuyID] || t.Show == nil {
			continue
		}
		seen[t.BuyID] = true

		fresh, err := s.Marker.MarkReminderSent(ctx, t.BuyID, s.Window)
		if err != nil {
			s.Logger.Warn("SCHEDULER", fmt.Sprintf("Reminder marker failed for purchase %d: %v", t.BuyID, err))
			continue
		}
		if !fresh {
			continue
		}

		msg := models.ShowReminder{
			PurchaseID: t.BuyID,
			ShowID:     t.ShowID,
			StartTime:  t.Show.StartTime,
		}
		if t.Buy != nil {
			msg.UserID = t.Buy.UserID
		}
		if t.Show.Movie != nil {
			msg.MovieTitle = t.Show.Movie.Title
		}
		if err := kafka.PublishJSON(ctx, s.Publisher, kafka.TopicShowReminder, strconv.FormatInt(t.BuyID, 10), msg); err != nil {
			s.Logger.Warn("SCHEDULER", fmt.Sprintf("Failed to publish reminder for purchase %d: %v", t.BuyID, err))
			continue
		}
		metrics.RemindersPublished.Inc()
		sent++
	}

	if sent > 0 {
		s.Logger.Info("SCHEDULER", fmt.Sprintf("Published %d show reminder(s)", sent))
	}
	return sent, nil
}
