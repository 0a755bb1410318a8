package models

import "errors"

// OrderStatus represents the current position of an order (or order line)
// in its fulfillment lifecycle.
type OrderStatus string

const (
	StatusDraft     OrderStatus = "draft"
	StatusOrdered   OrderStatus = "ordered"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// ErrIllegalTransition is returned when an order status change is outside
// the allowed lifecycle.
var ErrIllegalTransition = errors.New("illegal status transition")

// Allowed transitions: forward draft→ordered→ready→completed, with
// cancellation possible from any non-terminal state. Completed and
// cancelled are terminal.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusDraft:     {StatusOrdered: true, StatusCancelled: true},
	StatusOrdered:   {StatusReady: true, StatusCancelled: true},
	StatusReady:     {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether no further transitions are possible from s.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(allowedTransitions[s]) == 0
}

// CanTransition reports whether from→to is a legal lifecycle step.
func CanTransition(from, to OrderStatus) bool {
	next := allowedTransitions[from]
	return next != nil && next[to]
}
