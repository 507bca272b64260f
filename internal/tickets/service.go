package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-cinema/internal/errs"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/metrics"
	"ms-cinema/internal/models"
	qr "ms-cinema/internal/tickets/qr_generator"
	"ms-cinema/internal/tickets/db"
	"ms-cinema/internal/utils"
)

var ErrCancelledPurchase = errs.New(errs.KindValidation, "purchase has been cancelled")

// Sweeper expires purchases whose shows have finished.
type Sweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// PurchaseLookup loads a purchase with its detail, reporting a missing one
// as a NotFound error.
type PurchaseLookup interface {
	GetPurchase(ctx context.Context, id int64) (*models.Buy, error)
}

type TicketService struct {
	QR        *qr.QRGenerator
	Purchases PurchaseLookup
	Sweeper   Sweeper
	DB        *db.DB
	Logger    *logger.Logger
	Clock     utils.Clock
}

func NewTicketService(generator *qr.QRGenerator, purchases PurchaseLookup, sweeper Sweeper, store *db.DB, log *logger.Logger) *TicketService {
	return &TicketService{
		QR:        generator,
		Purchases: purchases,
		Sweeper:   sweeper,
		DB:        store,
		Logger:    log,
		Clock:     utils.SystemClock,
	}
}

// IssueQR signs a token for an existing purchase and renders it as a PNG
// data URL.
func (s *TicketService) IssueQR(ctx context.Context, purchaseID int64) (*models.IssueQRResponse, error) {
	if _, err := s.Purchases.GetPurchase(ctx, purchaseID); err != nil {
		return nil, err
	}

	token, err := s.QR.Issue(purchaseID)
	if err != nil {
		return nil, err
	}
	url, err := s.QR.EncodePNGDataURL(token)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("QR", fmt.Sprintf("Issued QR for purchase %d", purchaseID))
	return &models.IssueQRResponse{Token: token, QRCodeURL: url}, nil
}

// ValidateQR resolves a scanned token to its purchase. Expired purchases
// are brought up to date first and still validate; cancelled ones do not.
func (s *TicketService) ValidateQR(ctx context.Context, token string) (*models.Buy, error) {
	purchaseID, err := s.QR.Parse(token)
	if err != nil {
		outcome := "invalid_token"
		if errors.Is(err, qr.ErrSigningKeyMissing) {
			outcome = "error"
		}
		metrics.QRValidations.WithLabelValues(outcome).Inc()
		return nil, err
	}

	if s.Sweeper != nil {
		if _, err := s.Sweeper.SweepExpired(ctx, s.Clock()); err != nil {
			s.Logger.Warn("QR", fmt.Sprintf("Sweep before validating purchase %d failed: %v", purchaseID, err))
		}
	}

	buy, err := s.Purchases.GetPurchase(ctx, purchaseID)
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			metrics.QRValidations.WithLabelValues("not_found").Inc()
		} else {
			metrics.QRValidations.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	switch buy.Status {
	case models.PurchaseCancelled:
		metrics.QRValidations.WithLabelValues("cancelled").Inc()
		s.Logger.LogPurchase("QR_REJECTED", buy.ID, "purchase is cancelled")
		return nil, ErrCancelledPurchase
	case models.PurchaseValid, models.PurchaseExpired:
		metrics.QRValidations.WithLabelValues("valid").Inc()
		s.Logger.LogPurchase("QR_VALIDATED", buy.ID, string(buy.Status))
		return buy, nil
	default:
		metrics.QRValidations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("purchase %d has unknown status %q", buy.ID, buy.Status)
	}
}

// GetShowOccupancy counts the seats and tickets of a show.
func (s *TicketService) GetShowOccupancy(ctx context.Context, showID int64) (*models.ShowOccupancy, error) {
	exists, err := s.DB.ShowExists(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("check show %d: %w", showID, err)
	}
	if !exists {
		return nil, errs.NotFound("show %d not found", showID)
	}

	total, occupied, err := s.DB.CountSeats(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("count seats of show %d: %w", showID, err)
	}
	tickets, err := s.DB.CountTicketsByStatus(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("count tickets of show %d: %w", showID, err)
	}
	return &models.ShowOccupancy{ShowID: showID, Seats: total, OccupiedSeats: occupied, Tickets: tickets}, nil
}
