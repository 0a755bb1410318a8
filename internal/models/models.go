package models

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Event represents a sales event (festival, fair) that orders belong to
type Event struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Category groups products for display and station routing
type Category struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Position int    `db:"position" json:"position"`
}

// User represents an operator account
type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// User roles
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
	RoleStation = "station"
)

// Product represents a sellable item definition
type Product struct {
	ID         string    `db:"id" json:"id"`
	CategoryID string    `db:"category_id" json:"category_id"`
	Name       string    `db:"name" json:"name"`
	Price      int64     `db:"price" json:"price"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Order represents a customer order
type Order struct {
	ID        string      `db:"id" json:"id"`
	EventID   string      `db:"event_id" json:"event_id"`
	Number    int64       `db:"number" json:"number"`
	Total     int64       `db:"total" json:"total"`
	Status    OrderStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// OrderLine is a single product position on an order. CategoryID and
// UnitPrice are snapshots taken at creation; the live product may change
// afterwards without affecting historical lines.
type OrderLine struct {
	ID         string      `db:"id" json:"id"`
	OrderID    string      `db:"order_id" json:"order_id"`
	ProductID  string      `db:"product_id" json:"product_id"`
	CategoryID string      `db:"category_id" json:"category_id"`
	Quantity   int         `db:"quantity" json:"quantity"`
	UnitPrice  int64       `db:"unit_price" json:"unit_price"`
	Status     OrderStatus `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

// Station is a fulfillment step: it surfaces lines whose category and
// status match its sets and assigns exactly one output status on action.
type Station struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	CategoryIDs   pq.StringArray `db:"category_ids" json:"category_ids"`
	InputStatuses pq.StringArray `db:"input_statuses" json:"input_statuses"`
	OutputStatus  OrderStatus    `db:"output_status" json:"output_status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// ErrInvalidStation is returned when a station configuration violates the
// non-empty set invariants.
var ErrInvalidStation = errors.New("invalid station configuration")

// Validate checks the station invariants: non-empty category and input
// status sets, known statuses, and a single valid output status. A station
// must never match everything or nothing through an empty-set default.
func (s *Station) Validate() error {
	if s.Name == "" {
		return errors.Join(ErrInvalidStation, errors.New("name must not be empty"))
	}
	if len(s.CategoryIDs) == 0 {
		return errors.Join(ErrInvalidStation, errors.New("category_ids must not be empty"))
	}
	if len(s.InputStatuses) == 0 {
		return errors.Join(ErrInvalidStation, errors.New("input_statuses must not be empty"))
	}
	for _, raw := range s.InputStatuses {
		if !OrderStatus(raw).Valid() {
			return errors.Join(ErrInvalidStation, errors.New("unknown input status: "+raw))
		}
	}
	if !s.OutputStatus.Valid() {
		return errors.Join(ErrInvalidStation, errors.New("unknown output status: "+string(s.OutputStatus)))
	}
	return nil
}

// HandlesCategory reports whether the station covers the given category.
func (s *Station) HandlesCategory(categoryID string) bool {
	for _, id := range s.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// AcceptsStatus reports whether the station surfaces lines in the given status.
func (s *Station) AcceptsStatus(status OrderStatus) bool {
	for _, raw := range s.InputStatuses {
		if OrderStatus(raw) == status {
			return true
		}
	}
	return false
}
