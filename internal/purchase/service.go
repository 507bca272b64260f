package purchase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ms-cinema/internal/errs"
	"ms-cinema/internal/kafka"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/metrics"
	"ms-cinema/internal/models"
	"ms-cinema/internal/purchase/db"
	"ms-cinema/internal/utils"
	"ms-cinema/internal/validation"

	"github.com/google/uuid"
)

var ErrMissingUser = errs.New(errs.KindValidation, "Purchase must have a user")

// SeatLocker guards seats against concurrent purchases before the database
// transaction starts.
type SeatLocker interface {
	LockSeats(ctx context.Context, seatIDs []int64, owner string) (bool, error)
	UnlockSeats(ctx context.Context, seatIDs []int64, owner string) error
}

type PurchaseService struct {
	DB        *db.DB
	Allocator *Allocator
	Locks     SeatLocker
	Publisher kafka.Publisher
	Logger    *logger.Logger
	Clock     utils.Clock
}

// NewPurchaseService wires the orchestrator. locks may be nil when Redis is
// disabled; the database constraints still prevent double booking.
func NewPurchaseService(store *db.DB, locks SeatLocker, publisher kafka.Publisher, log *logger.Logger) *PurchaseService {
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	return &PurchaseService{
		DB:        store,
		Allocator: NewAllocator(log),
		Locks:     locks,
		Publisher: publisher,
		Logger:    log,
		Clock:     utils.SystemClock,
	}
}

// IsTicketPurchase reports whether a purchase description is the ticket
// category, the only one allowed to carry seats.
func IsTicketPurchase(description string) bool {
	return strings.Contains(strings.ToLower(description), models.CategoryTicketPurchase)
}

// CreatePurchase records a purchase together with its tickets, seat
// occupation and concession line items. Either everything is stored or
// nothing is.
func (s *PurchaseService) CreatePurchase(ctx context.Context, req models.PurchaseRequest) (*models.Buy, error) {
	if req.User == nil {
		metrics.PurchasesTotal.WithLabelValues("rejected").Inc()
		return nil, ErrMissingUser
	}
	if err := validation.Struct(req); err != nil {
		metrics.PurchasesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	seatIDs := req.SeatIDs()
	if len(seatIDs) > 0 && !IsTicketPurchase(req.Description) {
		metrics.PurchasesTotal.WithLabelValues("rejected").Inc()
		return nil, errs.Validation("seats can only be bought with the %q category", models.CategoryTicketPurchase)
	}

	exists, err := s.DB.UserExists(ctx, *req.User)
	if err != nil {
		return nil, fmt.Errorf("check user %d: %w", *req.User, err)
	}
	if !exists {
		metrics.PurchasesTotal.WithLabelValues("rejected").Inc()
		return nil, errs.NotFound("user %d not found", *req.User)
	}

	if len(seatIDs) > 0 && s.Locks != nil {
		owner := uuid.NewString()
		ok, err := s.Locks.LockSeats(ctx, seatIDs, owner)
		if err != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Seat lock unavailable, relying on database guards: %v", err))
		} else if !ok {
			metrics.PurchasesTotal.WithLabelValues("rejected").Inc()
			return nil, errs.Conflict("one or more seats are being purchased by someone else")
		} else {
			defer func() {
				if err := s.Locks.UnlockSeats(context.WithoutCancel(ctx), seatIDs, owner); err != nil {
					s.Logger.Warn("REDIS", fmt.Sprintf("Failed to release seat locks for %s: %v", owner, err))
				}
			}()
		}
	}

	var buy *models.Buy
	err = s.DB.RunInTx(ctx, func(ctx context.Context, tx *db.DB) error {
		userID := *req.User
		buy = &models.Buy{
			Description: req.Description,
			UserID:      &userID,
			Total:       req.Total,
			Status:      models.PurchaseValid,
			CreatedAt:   s.Clock(),
		}
		if err := tx.CreateBuy(ctx, buy); err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		if len(seatIDs) > 0 {
			if _, err := s.Allocator.Allocate(ctx, tx, buy, seatIDs); err != nil {
				return err
			}
		}

		for _, ref := range req.Snacks {
			snack, err := tx.GetSnack(ctx, ref.ID)
			if err != nil {
				if db.IsNotFound(err) {
					return errs.NotFound("snack %d not found", ref.ID)
				}
				return fmt.Errorf("load snack %d: %w", ref.ID, err)
			}
			item := &models.SnackLineItem{Quantity: ref.Quantity, BuyID: buy.ID, SnackID: snack.ID}
			if err := tx.CreateSnackLine(ctx, item); err != nil {
				return fmt.Errorf("insert snack line: %w", err)
			}
		}

		for _, ref := range req.Promotions {
			promotion, err := tx.GetPromotionByCode(ctx, ref.Code)
			if err != nil {
				if db.IsNotFound(err) {
					return errs.NotFound("promotion %q not found", ref.Code)
				}
				return fmt.Errorf("load promotion %q: %w", ref.Code, err)
			}
			item := &models.PromotionLineItem{Quantity: ref.Quantity, BuyID: buy.ID, PromotionID: promotion.ID}
			if err := tx.CreatePromotionLine(ctx, item); err != nil {
				return fmt.Errorf("insert promotion line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues("failed").Inc()
		s.Logger.Warn("PURCHASE", fmt.Sprintf("Purchase for user %d rolled back: %v", *req.User, err))
		return nil, errs.Transaction(err)
	}

	metrics.PurchasesTotal.WithLabelValues("created").Inc()
	metrics.TicketsAllocated.Add(float64(len(seatIDs)))
	s.Logger.LogPurchase("CREATED", buy.ID, fmt.Sprintf("%d seat(s), %d snack line(s), %d promotion line(s)",
		len(seatIDs), len(req.Snacks), len(req.Promotions)))

	created, err := s.GetPurchase(ctx, buy.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.TopicPurchaseCreated, created)
	return created, nil
}

// CancelPurchase moves a Valid purchase to Cancelled. Seats stay Occupied
// until an administrator releases them.
func (s *PurchaseService) CancelPurchase(ctx context.Context, id int64) (*models.Buy, error) {
	buy, err := s.DB.GetBuy(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errs.NotFound("purchase %d not found", id)
		}
		return nil, fmt.Errorf("load purchase %d: %w", id, err)
	}
	if !buy.Status.CanTransitionTo(models.PurchaseCancelled) {
		return nil, errs.Conflict("purchase %d is %s and cannot be cancelled", id, buy.Status)
	}

	ok, err := s.DB.SetStatus(ctx, id, models.PurchaseValid, models.PurchaseCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel purchase %d: %w", id, err)
	}
	if !ok {
		return nil, errs.Conflict("purchase %d changed while being cancelled", id)
	}

	metrics.PurchasesCancelled.Inc()
	s.Logger.LogPurchase("CANCELLED", id, "purchase cancelled")

	cancelled, err := s.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.TopicPurchaseCancelled, cancelled)
	return cancelled, nil
}

func (s *PurchaseService) GetPurchase(ctx context.Context, id int64) (*models.Buy, error) {
	buy, err := s.DB.GetPurchase(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errs.NotFound("purchase %d not found", id)
		}
		return nil, fmt.Errorf("load purchase %d: %w", id, err)
	}
	return buy, nil
}

func (s *PurchaseService) ListPurchasesByUser(ctx context.Context, userID int64) ([]*models.Buy, error) {
	exists, err := s.DB.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user %d: %w", userID, err)
	}
	if !exists {
		return nil, errs.NotFound("user %d not found", userID)
	}

	buys, err := s.DB.ListPurchasesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases of user %d: %w", userID, err)
	}
	return buys, nil
}

// publish never fails the caller; the purchase is already committed.
func (s *PurchaseService) publish(ctx context.Context, topic string, buy *models.Buy) {
	seatIDs := make([]int64, 0, len(buy.Tickets))
	for _, t := range buy.Tickets {
		seatIDs = append(seatIDs, t.SeatID)
	}
	msg := models.PurchaseEvent{
		PurchaseID: buy.ID,
		UserID:     buy.UserID,
		Status:     buy.Status,
		Total:      buy.Total,
		SeatIDs:    seatIDs,
		OccurredAt: time.Now().UTC(),
	}
	if err := kafka.PublishJSON(ctx, s.Publisher, topic, strconv.FormatInt(buy.ID, 10), msg); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish %s for purchase %d: %v", topic, buy.ID, err))
	}
}
