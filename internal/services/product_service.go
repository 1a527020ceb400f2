package services

import (
	"context"

	"stockroom/internal/models"
	"stockroom/internal/repositories"

	"github.com/hashicorp/go-hclog"
)

// EventPublisher publishes a JSON payload under a routing key.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	logger    hclog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no events are emitted.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, logger hclog.Logger) *ProductService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// GetAllProducts retrieves all products ordered by ascending ID.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a new, available product built from draft.
func (s *ProductService) CreateProduct(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	product := &models.Product{
		Name:         draft.Name,
		Price:        draft.Price,
		Availability: true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publish(models.EventProductCreated, product.ID, product)
	return product, nil
}

// UpdateProduct replaces every mutable field of an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, changes models.ProductChanges) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = changes.Name
	product.Price = changes.Price
	product.Availability = changes.Availability
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.publish(models.EventProductUpdated, product.ID, product)
	return product, nil
}

// ToggleAvailability flips the availability flag of a product.
//
// The read and the write are separate statements with no lock or version
// check, so two concurrent toggles can both observe the same value and one
// flip is lost.
func (s *ProductService) ToggleAvailability(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Availability = !product.Availability
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.publish(models.EventProductAvailabilityToggled, product.ID, product)
	return product, nil
}

// DeleteProduct hard-deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(models.EventProductDeleted, id, nil)
	return nil
}

// Ping reports whether the product store is reachable.
func (s *ProductService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *ProductService) publish(eventType string, id uint, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.NewProductEvent(eventType, id, product)
	if err := s.publisher.Publish(eventType, event); err != nil {
		s.logger.Warn("failed to publish product event", "type", eventType, "product_id", id, "error", err)
	}
}
