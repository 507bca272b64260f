package models

import (
	"time"

	"ms-cinema/internal/schedule"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	StartDate  time.Time `bun:"start_date,notnull" json:"startDate"`
	FinishDate time.Time `bun:"finish_date,notnull" json:"finishDate"`

	Cinemas []Cinema `bun:"-" json:"cinemas"`
}

func (e *Event) SlotID() int64 { return e.ID }

func (e *Event) SlotInterval() schedule.Interval {
	return schedule.Interval{Start: e.StartDate, End: e.FinishDate}
}

type EventCinema struct {
	bun.BaseModel `bun:"table:event_cinemas"`

	EventID  int64 `bun:"event_id,pk"`
	CinemaID int64 `bun:"cinema_id,pk"`
}
