package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CategoryTicketPurchase is the description that marks a Buy as carrying
// seats. Any other description is a concessions-only purchase.
const CategoryTicketPurchase = "ticket purchase"

// Buy is a customer purchase. UserID is required at creation and becomes
// NULL when the owning user is deleted.
type Buy struct {
	bun.BaseModel `bun:"table:buys"`

	ID          int64          `bun:"id,pk,autoincrement" json:"id"`
	Description string         `bun:"description,notnull" json:"description"`
	UserID      *int64         `bun:"user_id" json:"userId"`
	Total       float64        `bun:"total,notnull" json:"total"`
	Status      PurchaseStatus `bun:"status,notnull" json:"status"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`

	User       *User                `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Tickets    []*Ticket            `bun:"rel:has-many,join:id=buy_id" json:"tickets"`
	Snacks     []*SnackLineItem     `bun:"rel:has-many,join:id=buy_id" json:"snacks"`
	Promotions []*PromotionLineItem `bun:"rel:has-many,join:id=buy_id" json:"promotions"`
}

// Ticket binds one seat of one show to a purchase. The (seat, show) pair is
// unique so two purchases can never both commit the same seat.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID     int64 `bun:"id,pk,autoincrement" json:"id"`
	ShowID int64 `bun:"show_id,notnull,unique:ticket_seat_show" json:"showId"`
	SeatID int64 `bun:"seat_id,notnull,unique:ticket_seat_show" json:"seatId"`
	BuyID  int64 `bun:"buy_id,notnull" json:"buyId"`

	Show *Show `bun:"rel:belongs-to,join:show_id=id" json:"show,omitempty"`
	Seat *Seat `bun:"rel:belongs-to,join:seat_id=id" json:"seat,omitempty"`
	Buy  *Buy  `bun:"rel:belongs-to,join:buy_id=id" json:"-"`
}

type SnackLineItem struct {
	bun.BaseModel `bun:"table:snack_line_items"`

	ID       int64 `bun:"id,pk,autoincrement" json:"id"`
	Quantity int   `bun:"quantity,notnull" json:"cant"`
	BuyID    int64 `bun:"buy_id,notnull" json:"buyId"`
	SnackID  int64 `bun:"snack_id,notnull" json:"snackId"`

	Snack *Snack `bun:"rel:belongs-to,join:snack_id=id" json:"snack,omitempty"`
}

type PromotionLineItem struct {
	bun.BaseModel `bun:"table:promotion_line_items"`

	ID          int64 `bun:"id,pk,autoincrement" json:"id"`
	Quantity    int   `bun:"quantity,notnull" json:"cant"`
	BuyID       int64 `bun:"buy_id,notnull" json:"buyId"`
	PromotionID int64 `bun:"promotion_id,notnull" json:"promotionId"`

	Promotion *Promotion `bun:"rel:belongs-to,join:promotion_id=id" json:"promotion,omitempty"`
}
