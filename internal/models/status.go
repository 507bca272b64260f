package models

import "fmt"

// PurchaseStatus is the lifecycle state of a Buy. Valid is the only state
// that can be left.
type PurchaseStatus string

const (
	PurchaseValid     PurchaseStatus = "Valid"
	PurchaseExpired   PurchaseStatus = "Expired"
	PurchaseCancelled PurchaseStatus = "Cancelled"
)

func (s PurchaseStatus) IsKnown() bool {
	switch s {
	case PurchaseValid, PurchaseExpired, PurchaseCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a purchase may move from s to next.
func (s PurchaseStatus) CanTransitionTo(next PurchaseStatus) bool {
	switch s {
	case PurchaseValid:
		return next == PurchaseExpired || next == PurchaseCancelled
	case PurchaseExpired, PurchaseCancelled:
		return false
	default:
		return false
	}
}

// Transition returns next when the move is allowed.
func (s PurchaseStatus) Transition(next PurchaseStatus) (PurchaseStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("purchase status cannot move from %s to %s", s, next)
	}
	return next, nil
}

type SeatStatus string

const (
	SeatAvailable SeatStatus = "Available"
	SeatOccupied  SeatStatus = "Occupied"
)

func (s SeatStatus) IsKnown() bool {
	switch s {
	case SeatAvailable, SeatOccupied:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleClient   Role = "client"
)

func (r Role) IsKnown() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleClient:
		return true
	}
	return false
}
