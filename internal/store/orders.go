package store

import (
	"context"
	"database/sql"
	"fmt"

	"pos-service/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CreateOrder creates a new order. The sequential number must already be
// assigned; the unique constraint on (event_id, number) catches collisions
// when the counter fallback raced.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	query := `
		INSERT INTO orders (id, event_id, number, total, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	return s.db.GetContext(ctx, order, query,
		order.ID, order.EventID, order.Number, order.Total, order.Status)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByEventID retrieves orders for an event, newest first
func (s *Store) GetOrdersByEventID(ctx context.Context, eventID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE event_id = $1 ORDER BY number DESC", eventID)
	return orders, err
}

// NextOrderNumber returns MAX(number)+1 for the event. Used as the fallback
// when the Redis counter is unavailable.
func (s *Store) NextOrderNumber(ctx context.Context, eventID string) (int64, error) {
	var next int64
	err := s.db.GetContext(ctx, &next,
		"SELECT COALESCE(MAX(number), 0) + 1 FROM orders WHERE event_id = $1", eventID)
	return next, err
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

// TransitionOrderTx moves an order and all of its lines to status within a
// single transaction, so a partial failure never leaves the order row
// ahead of its lines.
func (s *Store) TransitionOrderTx(ctx context.Context, orderID string, status models.OrderStatus) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order not found: %s", orderID)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE order_lines SET status = $1 WHERE order_id = $2", status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update line statuses: %w", err)
	}

	return tx.Commit()
}

// UpdateOrderTotal recomputes and stores the order total from its lines
func (s *Store) UpdateOrderTotal(ctx context.Context, orderID string) (int64, error) {
	var total int64
	err := s.db.GetContext(ctx, &total, `
		UPDATE orders SET
			total = (SELECT COALESCE(SUM(quantity * unit_price), 0)
			         FROM order_lines WHERE order_id = $1),
			updated_at = NOW()
		WHERE id = $1
		RETURNING total`, orderID)
	return total, err
}

// CreateOrderLine creates a new order line with its price and category
// snapshots already captured
func (s *Store) CreateOrderLine(ctx context.Context, line *models.OrderLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO order_lines (id, order_id, product_id, category_id, quantity, unit_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return s.db.GetContext(ctx, &line.CreatedAt, query,
		line.ID, line.OrderID, line.ProductID, line.CategoryID,
		line.Quantity, line.UnitPrice, line.Status)
}

// GetOrderLineByID retrieves an order line by ID
func (s *Store) GetOrderLineByID(ctx context.Context, id string) (*models.OrderLine, error) {
	var line models.OrderLine
	err := s.db.GetContext(ctx, &line, "SELECT * FROM order_lines WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order line not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// GetOrderLinesByOrderID retrieves all lines for an order
func (s *Store) GetOrderLinesByOrderID(ctx context.Context, orderID string) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := s.db.SelectContext(ctx, &lines,
		"SELECT * FROM order_lines WHERE order_id = $1 ORDER BY created_at", orderID)
	return lines, err
}

// GetOrderLinesByStatuses retrieves lines whose status is in the given set.
// Used to build a station's candidate set server-side.
func (s *Store) GetOrderLinesByStatuses(ctx context.Context, statuses []string) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := s.db.SelectContext(ctx, &lines,
		"SELECT * FROM order_lines WHERE status = ANY($1) ORDER BY created_at", pq.Array(statuses))
	return lines, err
}

// UpdateOrderLineQuantity updates a line's quantity; the unit price snapshot
// is deliberately left untouched
func (s *Store) UpdateOrderLineQuantity(ctx context.Context, lineID string, quantity int) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE order_lines SET quantity = $1 WHERE id = $2", quantity, lineID)
	return err
}

// UpdateOrderLineStatus updates a line's status
func (s *Store) UpdateOrderLineStatus(ctx context.Context, lineID string, status models.OrderStatus) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE order_lines SET status = $1 WHERE id = $2", status, lineID)
	return err
}

// DeleteOrderLine deletes an order line
func (s *Store) DeleteOrderLine(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM order_lines WHERE id = $1", id)
	return err
}
