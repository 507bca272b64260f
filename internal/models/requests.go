package models

import "time"

type SeatRef struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type SnackRef struct {
	ID       int64 `json:"id" validate:"required,gt=0"`
	Quantity int   `json:"cant" validate:"required,gt=0"`
}

type PromotionRef struct {
	Code     string `json:"code" validate:"required"`
	Quantity int    `json:"cant" validate:"required,gt=0"`
}

// PurchaseRequest is the body of POST /api/purchases. User is checked by the
// orchestrator rather than the validator so a missing user reports the
// purchase-specific message.
type PurchaseRequest struct {
	User        *int64         `json:"user"`
	Description string         `json:"description" validate:"required"`
	Total       float64        `json:"total" validate:"gte=0"`
	Seats       []SeatRef      `json:"seats" validate:"unique=ID,dive"`
	Snacks      []SnackRef     `json:"snacks" validate:"dive"`
	Promotions  []PromotionRef `json:"promotions" validate:"dive"`
}

func (r PurchaseRequest) SeatIDs() []int64 {
	ids := make([]int64, 0, len(r.Seats))
	for _, s := range r.Seats {
		ids = append(ids, s.ID)
	}
	return ids
}

// ShowRequest creates or updates a show. A zero FinishTime is derived from
// the movie duration.
type ShowRequest struct {
	StartTime  time.Time `json:"startTime" validate:"required"`
	FinishTime time.Time `json:"finishTime"`
	TheaterID  int64     `json:"theaterId" validate:"required,gt=0"`
	MovieID    int64     `json:"movieId" validate:"required,gt=0"`
	FormatID   int64     `json:"formatId" validate:"required,gt=0"`
	LanguageID int64     `json:"languageId" validate:"required,gt=0"`
}

type EventRequest struct {
	Name       string    `json:"name" validate:"required"`
	StartDate  time.Time `json:"startDate" validate:"required"`
	FinishDate time.Time `json:"finishDate" validate:"required"`
	CinemaIDs  []int64   `json:"cinemas" validate:"required,min=1,dive,gt=0"`
}

type IssueQRRequest struct {
	PurchaseID int64 `json:"purchaseId" validate:"required,gt=0"`
}

// IssueQRResponse is written as-is, outside the usual envelope. The token
// only travels inside the image.
type IssueQRResponse struct {
	Token     string `json:"-"`
	QRCodeURL string `json:"qrCodeUrl"`
}

type ValidateQRRequest struct {
	Token string `json:"token" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"omitempty,oneof=admin employee client"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// Messages published on Kafka.

type PurchaseEvent struct {
	PurchaseID int64          `json:"purchaseId"`
	UserID     *int64         `json:"userId"`
	Status     PurchaseStatus `json:"status"`
	Total      float64        `json:"total"`
	SeatIDs    []int64        `json:"seatIds,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

type ExpirationEvent struct {
	Expired int64     `json:"expired"`
	SweptAt time.Time `json:"sweptAt"`
}

type ShowReminder struct {
	PurchaseID int64     `json:"purchaseId"`
	UserID     *int64    `json:"userId"`
	ShowID     int64     `json:"showId"`
	MovieTitle string    `json:"movieTitle"`
	StartTime  time.Time `json:"startTime"`
}

// ShowOccupancy summarises seats and tickets of one show. Tickets are
// grouped by the status of the purchase holding them.
type ShowOccupancy struct {
	ShowID        int64                  `json:"showId"`
	Seats         int                    `json:"seats"`
	OccupiedSeats int                    `json:"occupiedSeats"`
	Tickets       map[PurchaseStatus]int `json:"tickets"`
}
