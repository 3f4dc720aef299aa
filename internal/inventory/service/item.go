package service

import (
	"context"
	"time"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// ItemService serves the read side of the inventory record store.
type ItemService struct {
	items  *repository.ItemRepository
	logger *logger.Logger
}

// NewItemService creates a new item service
func NewItemService(items *repository.ItemRepository, log *logger.Logger) *ItemService {
	return &ItemService{items: items, logger: log}
}

// GetByID returns a single item by its surrogate ID
func (s *ItemService) GetByID(ctx context.Context, id string) (*repository.InventoryItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	decorateDaysOfLife(item, time.Now())
	return item, nil
}

// GetByKey returns a single item by its identifying key
func (s *ItemService) GetByKey(ctx context.Context, key repository.ItemKey) (*repository.InventoryItem, error) {
	item, err := s.items.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	decorateDaysOfLife(item, time.Now())
	return item, nil
}

// List returns a page of items, optionally filtered by type
func (s *ItemService) List(ctx context.Context, itemType string, page, perPage int) ([]*repository.InventoryItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	items, total, err := s.items.List(ctx, itemType, page, perPage)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	for _, item := range items {
		decorateDaysOfLife(item, now)
	}

	return items, total, nil
}

// decorateDaysOfLife fills the derived days-of-life field for chemical
// lots with an expiry date. Never stored; zero floor once expired.
func decorateDaysOfLife(item *repository.InventoryItem, now time.Time) {
	if !item.IsChemical() || item.ExpiryDate == nil {
		return
	}

	days := int(item.ExpiryDate.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	item.DaysOfLife = &days
}
