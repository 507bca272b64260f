// Package schedule holds the time-slot arithmetic shared by show and event
// scheduling.
package schedule

import (
	"errors"
	"time"
)

var ErrEmptyInterval = errors.New("finish must be after start")

// Interval is the half-open slot [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrEmptyInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether a and b share any instant. Touching endpoints
// (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Slot is anything scheduled on an interval and identified by an id.
type Slot interface {
	SlotID() int64
	SlotInterval() Interval
}

// Conflicts returns the slots overlapping candidate, ignoring the slot whose
// id is excludeID. Pass 0 when nothing is being updated.
func Conflicts[S Slot](candidate Interval, slots []S, excludeID int64) []S {
	var out []S
	for _, s := range slots {
		if excludeID != 0 && s.SlotID() == excludeID {
			continue
		}
		if Overlaps(candidate, s.SlotInterval()) {
			out = append(out, s)
		}
	}
	return out
}
