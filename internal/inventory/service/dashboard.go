package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/pkg/cache"
	"github.com/inelac/inventory-backend/pkg/logger"
)

const dashboardCacheKey = "dashboard:stats"

// DashboardStats aggregates the record store into the numbers the
// landing screen shows.
type DashboardStats struct {
	TotalItems         int            `json:"total_items"`
	ChemicalLots       int            `json:"chemical_lots"`
	SpareParts         int            `json:"spare_parts"`
	DepletedItems      int            `json:"depleted_items"`
	ItemsWithMismatch  int            `json:"items_with_mismatch"`
	TotalRetainedUnits int            `json:"total_retained_units"`
	LiberatedLots      int            `json:"liberated_lots"`
	ExpiringIn30Days   int            `json:"expiring_in_30_days"`
	ExpiringIn90Days   int            `json:"expiring_in_90_days"`
	ItemsByWarehouse   map[string]int `json:"items_by_warehouse"`
}

// DashboardService computes inventory KPIs, with optional cache in front.
type DashboardService struct {
	items  *repository.ItemRepository
	cache  *cache.Cache
	logger *logger.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(items *repository.ItemRepository, c *cache.Cache, log *logger.Logger) *DashboardService {
	return &DashboardService{items: items, cache: c, logger: log}
}

// Stats computes the dashboard aggregates
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var cached DashboardStats
	if s.cache.Get(ctx, dashboardCacheKey, &cached) {
		return &cached, nil
	}

	items, err := s.items.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalItems: len(items),
		ChemicalLots: lo.CountBy(items, func(i *repository.InventoryItem) bool {
			return i.IsChemical()
		}),
		DepletedItems: lo.CountBy(items, func(i *repository.InventoryItem) bool {
			return i.PhysicalExistence == 0
		}),
		ItemsWithMismatch: lo.CountBy(items, func(i *repository.InventoryItem) bool {
			return i.Difference != 0
		}),
		LiberatedLots: lo.CountBy(items, func(i *repository.InventoryItem) bool {
			return i.IsChemical() && i.Liberated
		}),
		TotalRetainedUnits: lo.SumBy(items, func(i *repository.InventoryItem) int {
			return i.Retained
		}),
		ExpiringIn30Days: countExpiringWithin(items, 30),
		ExpiringIn90Days: countExpiringWithin(items, 90),
		ItemsByWarehouse: lo.CountValuesBy(items, func(i *repository.InventoryItem) string {
			return i.WarehouseLabel
		}),
	}
	stats.SpareParts = stats.TotalItems - stats.ChemicalLots

	s.cache.Set(ctx, dashboardCacheKey, stats)

	return stats, nil
}

// InvalidateCache drops the cached aggregates after a mutation
func (s *DashboardService) InvalidateCache(ctx context.Context) {
	s.cache.Invalidate(ctx, dashboardCacheKey)
}

// countExpiringWithin counts chemical lots whose expiry date falls within
// the next n days. Already-expired lots are included: they still need
// attention on the dashboard.
func countExpiringWithin(items []*repository.InventoryItem, days int) int {
	cutoff := time.Now().AddDate(0, 0, days)
	return lo.CountBy(items, func(i *repository.InventoryItem) bool {
		return i.IsChemical() && i.ExpiryDate != nil && i.ExpiryDate.Before(cutoff)
	})
}
