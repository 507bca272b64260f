package purchase

import (
	"context"
	"fmt"
	"time"

	"ms-cinema/internal/kafka"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/metrics"
	"ms-cinema/internal/models"
	"ms-cinema/internal/purchase/db"
)

// Sweeper expires purchases whose shows are over. It only ever moves Valid
// purchases to Expired and never touches seats, so running it twice with
// the same now has the same effect as running it once.
type Sweeper struct {
	DB        *db.DB
	Publisher kafka.Publisher
	Logger    *logger.Logger
}

func NewSweeper(store *db.DB, publisher kafka.Publisher, log *logger.Logger) *Sweeper {
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	return &Sweeper{DB: store, Publisher: publisher, Logger: log}
}

// SweepExpired expires every Valid purchase holding a ticket for a show that
// finished strictly before now, in one statement.
func (s *Sweeper) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	n, err := s.DB.ExpireFinished(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expire finished purchases: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	metrics.PurchasesExpired.Add(float64(n))
	s.Logger.Info("SWEEPER", fmt.Sprintf("Expired %d purchase(s) with shows finished before %s", n, now.Format(time.RFC3339)))

	msg := models.ExpirationEvent{Expired: n, SweptAt: now}
	if err := kafka.PublishJSON(ctx, s.Publisher, kafka.TopicPurchaseExpired, now.Format(time.RFC3339), msg); err != nil {
		s.Logger.Warn("SWEEPER", fmt.Sprintf("Failed to publish expiration event: %v", err))
	}
	return n, nil
}
