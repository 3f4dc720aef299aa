package service

import (
	"context"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/pkg/errors"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// LocationService manages warehouse rack/position/row slots.
type LocationService struct {
	locations *repository.LocationRepository
	items     *repository.ItemRepository
	logger    *logger.Logger
}

// NewLocationService creates a new location service
func NewLocationService(locations *repository.LocationRepository, items *repository.ItemRepository, log *logger.Logger) *LocationService {
	return &LocationService{locations: locations, items: items, logger: log}
}

// Create creates a new location
func (s *LocationService) Create(ctx context.Context, loc *repository.Location) error {
	return s.locations.Create(ctx, loc)
}

// GetByID gets a location by ID
func (s *LocationService) GetByID(ctx context.Context, id string) (*repository.Location, error) {
	return s.locations.GetByID(ctx, id)
}

// List lists all locations
func (s *LocationService) List(ctx context.Context) ([]*repository.Location, error) {
	return s.locations.List(ctx)
}

// Update updates a location
func (s *LocationService) Update(ctx context.Context, loc *repository.Location) error {
	return s.locations.Update(ctx, loc)
}

// Delete removes a location unless inventory items still reference it
func (s *LocationService) Delete(ctx context.Context, id string) error {
	count, err := s.items.CountByLocation(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.BadRequest("location is still referenced by inventory items")
	}
	return s.locations.Delete(ctx, id)
}
