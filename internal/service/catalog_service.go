package service

import (
	"context"
	"fmt"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/realtime"
	"pos-service/internal/redisclient"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// CatalogService handles the reference data commands: events, categories,
// products and users.
type CatalogService struct {
	store    *store.Store
	notifier *changeNotifier
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, hub *realtime.Hub, audit *broker.AuditPublisher, redis *redisclient.Client) *CatalogService {
	return &CatalogService{
		store:    store,
		notifier: newChangeNotifier(hub, audit, redis),
		logger:   util.GetLogger(),
	}
}

// CategoryRequest carries category fields
type CategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	Position int    `json:"position"`
}

// ProductRequest carries product fields
type ProductRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Price      int64  `json:"price" binding:"min=0"`
	Active     bool   `json:"active"`
}

// EventRequest carries sales event fields
type EventRequest struct {
	Name   string `json:"name" binding:"required"`
	Active bool   `json:"active"`
}

// UserRequest carries operator account fields
type UserRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role" binding:"required,oneof=admin cashier station"`
}

// CreateEvent creates a sales event
func (s *CatalogService) CreateEvent(ctx context.Context, req *EventRequest) (*models.Event, error) {
	event := &models.Event{Name: req.Name, Active: req.Active}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.notifier.notify(ctx, realtime.Added(*event))
	return event, nil
}

// ListEvents retrieves all events
func (s *CatalogService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.store.GetEvents(ctx)
}

// CreateCategory creates a category
func (s *CatalogService) CreateCategory(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	category := &models.Category{Name: req.Name, Position: req.Position}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.notifier.notify(ctx, realtime.Added(*category))
	return category, nil
}

// UpdateCategory updates a category
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, req *CategoryRequest) (*models.Category, error) {
	category, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = req.Name
	category.Position = req.Position

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	s.notifier.notify(ctx, realtime.Updated(*category))
	return category, nil
}

// DeleteCategory deletes a category
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, category.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.notifier.notify(ctx, realtime.Deleted(*category))
	return nil
}

// ListCategories retrieves all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.GetCategories(ctx)
}

// CreateProduct creates a product under an existing category
func (s *CatalogService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	if _, err := s.store.GetCategoryByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Price:      req.Price,
		Active:     req.Active,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.notifier.notify(ctx, realtime.Added(*product))
	return product, nil
}

// UpdateProduct updates a product definition. Deactivation is broadcast
// like any update; existing order lines keep their snapshots.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req *ProductRequest) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategoryByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product.CategoryID = req.CategoryID
	product.Name = req.Name
	product.Price = req.Price
	product.Active = req.Active

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	s.notifier.notify(ctx, realtime.Updated(*product))
	return product, nil
}

// DeleteProduct deletes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, product.ID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.notifier.notify(ctx, realtime.Deleted(*product))
	return nil
}

// ListProducts retrieves all products
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetProducts(ctx)
}

// CreateUser creates an operator account
func (s *CatalogService) CreateUser(ctx context.Context, req *UserRequest) (*models.User, error) {
	user := &models.User{Name: req.Name, Role: req.Role}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.notifier.notify(ctx, realtime.Added(*user))
	return user, nil
}

// ListUsers retrieves all users
func (s *CatalogService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.GetUsers(ctx)
}
