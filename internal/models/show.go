package models

import (
	"time"

	"ms-cinema/internal/schedule"

	"github.com/uptrace/bun"
)

// Show is a screening of a movie in one theater. The slot is the half-open
// interval [StartTime, FinishTime).
type Show struct {
	bun.BaseModel `bun:"table:shows"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	StartTime  time.Time `bun:"start_time,notnull" json:"startTime"`
	FinishTime time.Time `bun:"finish_time,notnull" json:"finishTime"`
	TheaterID  int64     `bun:"theater_id,notnull" json:"theaterId"`
	MovieID    int64     `bun:"movie_id,notnull" json:"movieId"`
	FormatID   int64     `bun:"format_id,notnull" json:"formatId"`
	LanguageID int64     `bun:"language_id,notnull" json:"languageId"`

	Theater  *Theater  `bun:"rel:belongs-to,join:theater_id=id" json:"theater,omitempty"`
	Movie    *Movie    `bun:"rel:belongs-to,join:movie_id=id" json:"movie,omitempty"`
	Format   *Format   `bun:"rel:belongs-to,join:format_id=id" json:"format,omitempty"`
	Language *Language `bun:"rel:belongs-to,join:language_id=id" json:"language,omitempty"`
	Seats    []*Seat   `bun:"rel:has-many,join:id=show_id" json:"seats,omitempty"`
}

func (s *Show) SlotID() int64 { return s.ID }

func (s *Show) SlotInterval() schedule.Interval {
	return schedule.Interval{Start: s.StartTime, End: s.FinishTime}
}

type Seat struct {
	bun.BaseModel `bun:"table:seats"`

	ID     int64      `bun:"id,pk,autoincrement" json:"id"`
	Number int        `bun:"number,notnull" json:"number"`
	Status SeatStatus `bun:"status,notnull" json:"status"`
	ShowID int64      `bun:"show_id,notnull" json:"showId"`
}
