package service

import (
	"context"
	"time"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// NotificationService serves the two notification views: the persisted
// depletion log and the live set of currently depleted items.
type NotificationService struct {
	notifications *repository.NotificationRepository
	items         *repository.ItemRepository
	logger        *logger.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notifications *repository.NotificationRepository,
	items *repository.ItemRepository,
	log *logger.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		items:         items,
		logger:        log,
	}
}

// ListRecent returns the notifications logged within the given window.
// A non-positive window defaults to the 24h dedup window.
func (s *NotificationService) ListRecent(ctx context.Context, window time.Duration) ([]*repository.Notification, error) {
	if window <= 0 {
		window = notificationDedupWindow
	}
	return s.notifications.ListSince(ctx, time.Now().Add(-window))
}

// ListCurrentlyDepleted scans the live record store for items at zero
// physical existence. Unlike ListRecent this reflects current state, not
// the historical log: an item restocked after depletion drops out.
func (s *NotificationService) ListCurrentlyDepleted(ctx context.Context) ([]*repository.InventoryItem, error) {
	return s.items.ListDepleted(ctx)
}
