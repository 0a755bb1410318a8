package service

import (
	"context"
	"errors"
	"fmt"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/realtime"
	"pos-service/internal/redisclient"
	"pos-service/internal/routing"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// ErrLineNotVisible is returned when a station acts on a line outside its
// category or status coverage.
var ErrLineNotVisible = errors.New("line not visible at station")

// StationService handles station configuration and station actions on
// order lines.
type StationService struct {
	store    *store.Store
	notifier *changeNotifier
	logger   *zap.Logger
}

// NewStationService creates a new station service
func NewStationService(store *store.Store, hub *realtime.Hub, audit *broker.AuditPublisher, redis *redisclient.Client) *StationService {
	return &StationService{
		store:    store,
		notifier: newChangeNotifier(hub, audit, redis),
		logger:   util.GetLogger(),
	}
}

// StationRequest carries the admin-editable station configuration
type StationRequest struct {
	Name          string   `json:"name" binding:"required"`
	CategoryIDs   []string `json:"category_ids" binding:"required"`
	InputStatuses []string `json:"input_statuses" binding:"required"`
	OutputStatus  string   `json:"output_status" binding:"required"`
}

func (req *StationRequest) apply(station *models.Station) {
	station.Name = req.Name
	station.CategoryIDs = req.CategoryIDs
	station.InputStatuses = req.InputStatuses
	station.OutputStatus = models.OrderStatus(req.OutputStatus)
}

// CreateStation validates and persists a new station. Empty category or
// status sets never make it past validation, so they never reach
// subscribers either.
func (s *StationService) CreateStation(ctx context.Context, req *StationRequest) (*models.Station, error) {
	ctx, span := util.StartSpan(ctx, "StationService.CreateStation")
	defer span.End()

	station := &models.Station{}
	req.apply(station)

	if err := station.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateStation(ctx, station); err != nil {
		return nil, fmt.Errorf("failed to create station: %w", err)
	}

	s.logger.Info("station created",
		zap.String("station_id", station.ID),
		zap.String("name", station.Name))

	s.notifier.notify(ctx, realtime.Added(*station))
	return station, nil
}

// UpdateStation validates and persists a station change.
func (s *StationService) UpdateStation(ctx context.Context, stationID string, req *StationRequest) (*models.Station, error) {
	ctx, span := util.StartSpan(ctx, "StationService.UpdateStation")
	defer span.End()

	requested := &models.Station{}
	req.apply(requested)
	if err := requested.Validate(); err != nil {
		return nil, err
	}

	station, err := s.store.GetStationByID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	req.apply(station)

	if err := s.store.UpdateStation(ctx, station); err != nil {
		return nil, fmt.Errorf("failed to update station: %w", err)
	}

	s.notifier.notify(ctx, realtime.Updated(*station))
	return station, nil
}

// DeleteStation removes a station. Orders still referencing its categories
// or statuses are untouched.
func (s *StationService) DeleteStation(ctx context.Context, stationID string) error {
	ctx, span := util.StartSpan(ctx, "StationService.DeleteStation")
	defer span.End()

	station, err := s.store.GetStationByID(ctx, stationID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteStation(ctx, station.ID); err != nil {
		return fmt.Errorf("failed to delete station: %w", err)
	}

	s.notifier.notify(ctx, realtime.Deleted(*station))
	return nil
}

// GetStation retrieves a station by ID
func (s *StationService) GetStation(ctx context.Context, stationID string) (*models.Station, error) {
	return s.store.GetStationByID(ctx, stationID)
}

// ListStations retrieves all stations
func (s *StationService) ListStations(ctx context.Context) ([]models.Station, error) {
	return s.store.GetStations(ctx)
}

// VisibleLines returns the lines the station currently surfaces: category
// in its set, status in its input set.
func (s *StationService) VisibleLines(ctx context.Context, stationID string) ([]models.OrderLine, error) {
	station, err := s.store.GetStationByID(ctx, stationID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.GetOrderLinesByStatuses(ctx, station.InputStatuses)
	if err != nil {
		return nil, err
	}

	return routing.VisibleLines(station, candidates), nil
}

// Act performs the station's single deterministic transition on a visible
// line. If all sibling lines then agree on the status, the parent order
// follows. First actor wins: once the change is broadcast the line drops
// out of every station whose input set no longer matches.
func (s *StationService) Act(ctx context.Context, stationID, lineID string) (*models.OrderLine, error) {
	ctx, span := util.StartSpan(ctx, "StationService.Act")
	defer span.End()

	station, err := s.store.GetStationByID(ctx, stationID)
	if err != nil {
		return nil, err
	}

	line, err := s.store.GetOrderLineByID(ctx, lineID)
	if err != nil {
		return nil, err
	}

	if !routing.Visible(station, line) {
		return nil, fmt.Errorf("%w: line %s at station %s", ErrLineNotVisible, line.ID, station.ID)
	}

	next := routing.NextStatus(station)
	if !models.CanTransition(line.Status, next) {
		util.TransitionsRejectedTotal.WithLabelValues(string(line.Status), string(next)).Inc()
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrIllegalTransition, line.Status, next)
	}

	if err := s.store.UpdateOrderLineStatus(ctx, line.ID, next); err != nil {
		return nil, fmt.Errorf("failed to update line status: %w", err)
	}
	line.Status = next

	util.StationActionsTotal.WithLabelValues(station.Name).Inc()
	s.logger.Info("station acted on line",
		zap.String("station_id", station.ID),
		zap.String("line_id", line.ID),
		zap.String("status", string(next)))

	s.notifier.notify(ctx, realtime.Updated(*line))

	s.advanceOrderIfAgreed(ctx, line.OrderID, next)
	return line, nil
}

// advanceOrderIfAgreed moves the parent order forward when every line now
// carries the same status and the move is legal.
func (s *StationService) advanceOrderIfAgreed(ctx context.Context, orderID string, status models.OrderStatus) {
	lines, err := s.store.GetOrderLinesByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Error("failed to load sibling lines", zap.Error(err))
		return
	}

	agreed, ok := routing.OrderStatusAfter(lines, status)
	if !ok {
		return
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		s.logger.Error("failed to load order", zap.Error(err))
		return
	}
	if order.Status == agreed || !models.CanTransition(order.Status, agreed) {
		return
	}

	if err := s.store.UpdateOrderStatus(ctx, order.ID, agreed); err != nil {
		s.logger.Error("failed to advance order status", zap.Error(err))
		return
	}
	order.Status = agreed

	if agreed == models.StatusCompleted {
		util.OrdersCompletedTotal.Inc()
	}

	s.notifier.notify(ctx, realtime.Updated(*order))
}
