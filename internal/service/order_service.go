package service

import (
	"context"
	"errors"
	"fmt"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/realtime"
	"pos-service/internal/redisclient"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// ErrOrderNotEditable is returned when lines are changed on an order that
// already left draft.
var ErrOrderNotEditable = errors.New("order is no longer editable")

// OrderService handles order commands. Every successful store commit is
// followed by a matching change envelope broadcast.
type OrderService struct {
	store    *store.Store
	redis    *redisclient.Client
	notifier *changeNotifier
	logger   *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store *store.Store,
	redis *redisclient.Client,
	hub *realtime.Hub,
	audit *broker.AuditPublisher,
) *OrderService {
	return &OrderService{
		store:    store,
		redis:    redis,
		notifier: newChangeNotifier(hub, audit, redis),
		logger:   util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to open a new order
type CreateOrderRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

// AddLineRequest represents a product position added to a draft order
type AddLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CreateOrder opens a new draft order with the next sequential number for
// its event.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	event, err := s.store.GetEventByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.Active {
		return nil, fmt.Errorf("event is not active: %s", event.ID)
	}

	number, err := s.nextOrderNumber(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign order number: %w", err)
	}

	order := &models.Order{
		EventID: event.ID,
		Number:  number,
		Status:  models.StatusDraft,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int64("number", order.Number))

	s.notifier.notify(ctx, realtime.Added(*order))
	return order, nil
}

// nextOrderNumber draws from the Redis counter and falls back to the
// database MAX+1 when Redis is unavailable.
func (s *OrderService) nextOrderNumber(ctx context.Context, eventID string) (int64, error) {
	if s.redis != nil {
		number, err := s.redis.NextOrderNumber(ctx, eventID)
		if err == nil {
			return number, nil
		}
		s.logger.Warn("redis order counter failed, falling back to DB",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
	return s.store.NextOrderNumber(ctx, eventID)
}

// AddLine adds a product position to a draft order, snapshotting the unit
// price and category at this moment.
func (s *OrderService) AddLine(ctx context.Context, orderID string, req *AddLineRequest) (*models.OrderLine, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AddLine")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusDraft {
		return nil, ErrOrderNotEditable
	}

	product, err := s.store.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("product is not active: %s", product.ID)
	}

	line := &models.OrderLine{
		OrderID:    order.ID,
		ProductID:  product.ID,
		CategoryID: product.CategoryID,
		Quantity:   req.Quantity,
		UnitPrice:  product.Price,
		Status:     models.StatusDraft,
	}

	if err := s.store.CreateOrderLine(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to create order line: %w", err)
	}

	updated, err := s.refreshTotal(ctx, order)
	if err != nil {
		return nil, err
	}

	s.notifier.notify(ctx, realtime.Added(*line))
	s.notifier.notify(ctx, realtime.Updated(*updated))
	return line, nil
}

// UpdateLineQuantity changes a draft line's quantity. The price snapshot is
// untouched.
func (s *OrderService) UpdateLineQuantity(ctx context.Context, lineID string, quantity int) (*models.OrderLine, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateLineQuantity")
	defer span.End()

	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	line, err := s.store.GetOrderLineByID(ctx, lineID)
	if err != nil {
		return nil, err
	}

	order, err := s.store.GetOrderByID(ctx, line.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusDraft {
		return nil, ErrOrderNotEditable
	}

	if err := s.store.UpdateOrderLineQuantity(ctx, line.ID, quantity); err != nil {
		return nil, fmt.Errorf("failed to update line quantity: %w", err)
	}
	line.Quantity = quantity

	updated, err := s.refreshTotal(ctx, order)
	if err != nil {
		return nil, err
	}

	s.notifier.notify(ctx, realtime.Updated(*line))
	s.notifier.notify(ctx, realtime.Updated(*updated))
	return line, nil
}

// RemoveLine deletes a draft line.
func (s *OrderService) RemoveLine(ctx context.Context, lineID string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.RemoveLine")
	defer span.End()

	line, err := s.store.GetOrderLineByID(ctx, lineID)
	if err != nil {
		return err
	}

	order, err := s.store.GetOrderByID(ctx, line.OrderID)
	if err != nil {
		return err
	}
	if order.Status != models.StatusDraft {
		return ErrOrderNotEditable
	}

	if err := s.store.DeleteOrderLine(ctx, line.ID); err != nil {
		return fmt.Errorf("failed to delete order line: %w", err)
	}

	updated, err := s.refreshTotal(ctx, order)
	if err != nil {
		return err
	}

	s.notifier.notify(ctx, realtime.Deleted(*line))
	s.notifier.notify(ctx, realtime.Updated(*updated))
	return nil
}

// Transition moves an order (and all its lines) to a new status. Illegal
// transitions are rejected before any commit or publish.
func (s *OrderService) Transition(ctx context.Context, orderID string, to models.OrderStatus) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Transition")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(order.Status, to) {
		util.TransitionsRejectedTotal.WithLabelValues(string(order.Status), string(to)).Inc()
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrIllegalTransition, order.Status, to)
	}

	if err := s.store.TransitionOrderTx(ctx, order.ID, to); err != nil {
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}
	order.Status = to

	switch to {
	case models.StatusCompleted:
		util.OrdersCompletedTotal.Inc()
	case models.StatusCancelled:
		util.OrdersCancelledTotal.Inc()
	}

	s.logger.Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("status", string(to)))

	s.notifier.notify(ctx, realtime.Updated(*order))

	lines, err := s.store.GetOrderLinesByOrderID(ctx, order.ID)
	if err != nil {
		s.logger.Error("failed to load lines after transition", zap.Error(err))
		return order, nil
	}
	for _, line := range lines {
		s.notifier.notify(ctx, realtime.Updated(line))
	}

	return order, nil
}

// GetOrder retrieves an order and its lines
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, []models.OrderLine, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	lines, err := s.store.GetOrderLinesByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, lines, nil
}

// ListOrders retrieves all orders for an event
func (s *OrderService) ListOrders(ctx context.Context, eventID string) ([]models.Order, error) {
	return s.store.GetOrdersByEventID(ctx, eventID)
}

func (s *OrderService) refreshTotal(ctx context.Context, order *models.Order) (*models.Order, error) {
	total, err := s.store.UpdateOrderTotal(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute order total: %w", err)
	}
	order.Total = total
	return order, nil
}
