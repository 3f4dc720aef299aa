package events

import (
	"context"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/pkg/logger"
	"github.com/inelac/inventory-backend/pkg/messaging"
)

// Publisher publishes inventory domain events. Publishing happens after
// the owning transaction commits and is best-effort: failures are logged,
// never surfaced to the caller.
type Publisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewPublisher creates a new inventory event publisher
func NewPublisher(p *messaging.Publisher, log *logger.Logger) *Publisher {
	return &Publisher{publisher: p, logger: log}
}

// PublishMovementApplied publishes the movement-applied event
func (p *Publisher) PublishMovementApplied(ctx context.Context, item *repository.InventoryItem, entry *repository.LedgerEntry) {
	event := messaging.MovementAppliedEvent{
		ItemID:                 item.ID,
		ItemCode:               item.Code,
		Lot:                    item.Lot,
		MovementKind:           entry.MovementKind,
		Quantity:               entry.Quantity,
		PhysicalExistenceAfter: entry.PhysicalExistenceAfter,
		ActorID:                entry.ActorID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventMovementApplied, event); err != nil {
		p.logger.Error().Err(err).
			Int("item_code", item.Code).
			Msg("failed to publish movement applied event")
	}
}

// PublishStockDepleted publishes the stock-depleted event
func (p *Publisher) PublishStockDepleted(ctx context.Context, itemCode int, description string) {
	event := messaging.StockDepletedEvent{
		ItemCode:    itemCode,
		Description: description,
	}

	if err := p.publisher.Publish(ctx, messaging.EventStockDepleted, event); err != nil {
		p.logger.Error().Err(err).
			Int("item_code", itemCode).
			Msg("failed to publish stock depleted event")
	}
}

// PublishItemDeleted publishes the item-deleted event
func (p *Publisher) PublishItemDeleted(ctx context.Context, itemCode int, lot, actorID string) {
	event := map[string]interface{}{
		"item_code": itemCode,
		"lot":       lot,
		"actor_id":  actorID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventItemDeleted, event); err != nil {
		p.logger.Error().Err(err).
			Int("item_code", itemCode).
			Msg("failed to publish item deleted event")
	}
}
