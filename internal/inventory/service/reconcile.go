package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/pkg/database"
	"github.com/inelac/inventory-backend/pkg/errors"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// maxConflictRetries bounds transparent retries of serialization conflicts.
// Business-rule failures are never retried.
const maxConflictRetries = 3

// notificationDedupWindow is the rolling window within which at most one
// stock-depleted notification per item code is created.
const notificationDedupWindow = 24 * time.Hour

// EventPublisher publishes inventory events after a successful commit.
// A nil publisher disables event publishing.
type EventPublisher interface {
	PublishMovementApplied(ctx context.Context, item *repository.InventoryItem, entry *repository.LedgerEntry)
	PublishStockDepleted(ctx context.Context, itemCode int, description string)
	PublishItemDeleted(ctx context.Context, itemCode int, lot, actorID string)
}

// ReconciliationService applies stock movements and keeps the inventory
// record store, the movement ledger and the notification log consistent.
// Every mutating operation runs read-validate-write-append inside a single
// transaction: either all writes commit or none are observable.
type ReconciliationService struct {
	db            *database.DB
	items         *repository.ItemRepository
	ledger        *repository.LedgerRepository
	notifications *repository.NotificationRepository
	publisher     EventPublisher
	logger        *logger.Logger
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	db *database.DB,
	items *repository.ItemRepository,
	ledger *repository.LedgerRepository,
	notifications *repository.NotificationRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		db:            db,
		items:         items,
		ledger:        ledger,
		notifications: notifications,
		publisher:     publisher,
		logger:        log,
	}
}

// NewItemInput holds the fields for a new inventory entry
type NewItemInput struct {
	ItemType          string
	Code              int
	Lot               string
	Description       string
	Unit              string
	PhysicalExistence int
	SystemExistence   int
	Retained          int
	Liberated         bool
	ExpiryDate        *time.Time
	IngestDate        *time.Time
	LocationID        *string
	WarehouseLabel    string
}

// EditItemInput holds the optional field overrides for an edit.
// Nil fields are left unchanged.
type EditItemInput struct {
	Description       *string
	Unit              *string
	Liberated         *bool
	ExpiryDate        *time.Time
	IngestDate        *time.Time
	LocationID        *string
	WarehouseLabel    *string
	PhysicalExistence *int
	SystemExistence   *int
}

// CreateItem registers a new chemical lot or spare-part entry and writes
// the NEW_ENTRY ledger row.
func (s *ReconciliationService) CreateItem(ctx context.Context, actorID string, in NewItemInput) (*repository.InventoryItem, error) {
	if in.ItemType != repository.ItemTypeChemical && in.ItemType != repository.ItemTypeSparePart {
		return nil, errors.Validation(map[string]string{
			"item_type": "must be one of: chemical, spare_part",
		})
	}
	if in.PhysicalExistence < 0 || in.SystemExistence < 0 || in.Retained < 0 {
		return nil, errors.InvalidAmount("existence and retained quantities must not be negative")
	}
	if in.ItemType == repository.ItemTypeChemical {
		if in.Lot == "" {
			return nil, errors.Validation(map[string]string{"lot": "this field is required"})
		}
		if err := validateChemicalDates(in.ExpiryDate, in.IngestDate); err != nil {
			return nil, err
		}
	} else if in.Lot != "" || in.Retained != 0 {
		return nil, errors.Validation(map[string]string{
			"lot": "spare parts carry no lot or retained stock",
		})
	}

	item := &repository.InventoryItem{
		ItemType:          in.ItemType,
		Code:              in.Code,
		Lot:               in.Lot,
		Description:       in.Description,
		Unit:              in.Unit,
		PhysicalExistence: in.PhysicalExistence,
		SystemExistence:   in.SystemExistence,
		Difference:        abs(in.PhysicalExistence - in.SystemExistence),
		Retained:          in.Retained,
		Liberated:         in.Liberated,
		ExpiryDate:        in.ExpiryDate,
		IngestDate:        in.IngestDate,
		LocationID:        in.LocationID,
		WarehouseLabel:    in.WarehouseLabel,
		ReportedBy:        actorID,
		LastMovementKind:  repository.MovementNewEntry,
	}

	err := s.withConflictRetry(ctx, func(tx *sqlx.Tx) error {
		if err := s.items.CreateTx(ctx, tx, item); err != nil {
			return err
		}
		return s.ledger.AppendTx(ctx, tx, &repository.LedgerEntry{
			ItemCode:               item.Code,
			Description:            item.Description,
			LotOrPartNumber:        item.Lot,
			MovementKind:           repository.MovementNewEntry,
			Quantity:               item.PhysicalExistence,
			PhysicalExistenceAfter: item.PhysicalExistence,
			ActorID:                actorID,
			WarehouseLabel:         item.WarehouseLabel,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("code", item.Code).
		Str("lot", item.Lot).
		Str("actor_id", actorID).
		Msg("inventory item created")

	return item, nil
}

// ApplyMovement applies an inbound or outbound stock movement.
// On success exactly one ledger entry is written, and a stock-depleted
// notification is raised (subject to the 24h dedup window) when the
// movement drives physical existence to zero.
func (s *ReconciliationService) ApplyMovement(ctx context.Context, actorID string, key repository.ItemKey, kind string, quantity int) (*repository.InventoryItem, error) {
	if quantity <= 0 {
		return nil, errors.InvalidAmount("movement quantity must be positive")
	}
	if kind != repository.MovementInbound && kind != repository.MovementOutbound {
		return nil, errors.Validation(map[string]string{
			"kind": "must be one of: INBOUND, OUTBOUND",
		})
	}

	var (
		item     *repository.InventoryItem
		entry    *repository.LedgerEntry
		notified bool
	)

	err := s.withConflictRetry(ctx, func(tx *sqlx.Tx) error {
		notified = false

		var err error
		item, err = s.items.GetByKeyForUpdateTx(ctx, tx, key)
		if err != nil {
			return err
		}

		if kind == repository.MovementOutbound {
			if item.PhysicalExistence < quantity {
				return errors.InsufficientStock(item.Code, item.PhysicalExistence, quantity)
			}
			item.PhysicalExistence -= quantity
		} else {
			item.PhysicalExistence += quantity
		}

		item.Difference = abs(item.PhysicalExistence - item.SystemExistence)
		item.LastMovementKind = kind
		item.ReportedBy = actorID

		if err := s.items.UpdateTx(ctx, tx, item); err != nil {
			return err
		}

		entry = &repository.LedgerEntry{
			ItemCode:               item.Code,
			Description:            item.Description,
			LotOrPartNumber:        item.Lot,
			MovementKind:           kind,
			Quantity:               quantity,
			PhysicalExistenceAfter: item.PhysicalExistence,
			ActorID:                actorID,
			WarehouseLabel:         item.WarehouseLabel,
		}
		if err := s.ledger.AppendTx(ctx, tx, entry); err != nil {
			return err
		}

		if item.PhysicalExistence == 0 {
			notified, err = s.raiseIfDepletedTx(ctx, tx, item.Code, item.Description)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishMovementApplied(ctx, item, entry)
		if notified {
			s.publisher.PublishStockDepleted(ctx, item.Code, item.Description)
		}
	}

	return item, nil
}

// EditItem updates descriptive fields, dates, location, unit, the
// liberated flag, and optionally overrides the existence counters.
// The difference is recomputed and one EDITED ledger entry is written.
func (s *ReconciliationService) EditItem(ctx context.Context, actorID string, key repository.ItemKey, in EditItemInput) (*repository.InventoryItem, error) {
	if in.PhysicalExistence != nil && *in.PhysicalExistence < 0 {
		return nil, errors.InvalidAmount("physical existence must not be negative")
	}
	if in.SystemExistence != nil && *in.SystemExistence < 0 {
		return nil, errors.InvalidAmount("system existence must not be negative")
	}

	var item *repository.InventoryItem

	err := s.withConflictRetry(ctx, func(tx *sqlx.Tx) error {
		var err error
		item, err = s.items.GetByKeyForUpdateTx(ctx, tx, key)
		if err != nil {
			return err
		}

		priorPhysical := item.PhysicalExistence

		if in.Description != nil {
			item.Description = *in.Description
		}
		if in.Unit != nil {
			item.Unit = *in.Unit
		}
		if in.Liberated != nil {
			item.Liberated = *in.Liberated
		}
		if in.ExpiryDate != nil {
			item.ExpiryDate = in.ExpiryDate
		}
		if in.IngestDate != nil {
			item.IngestDate = in.IngestDate
		}
		if in.LocationID != nil {
			item.LocationID = in.LocationID
		}
		if in.WarehouseLabel != nil {
			item.WarehouseLabel = *in.WarehouseLabel
		}
		if in.PhysicalExistence != nil {
			item.PhysicalExistence = *in.PhysicalExistence
		}
		if in.SystemExistence != nil {
			item.SystemExistence = *in.SystemExistence
		}

		if item.IsChemical() {
			if err := validateChemicalDates(item.ExpiryDate, item.IngestDate); err != nil {
				return err
			}
		}

		item.Difference = abs(item.PhysicalExistence - item.SystemExistence)
		item.LastMovementKind = repository.MovementEdited
		item.ReportedBy = actorID

		if err := s.items.UpdateTx(ctx, tx, item); err != nil {
			return err
		}

		return s.ledger.AppendTx(ctx, tx, &repository.LedgerEntry{
			ItemCode:               item.Code,
			Description:            item.Description,
			LotOrPartNumber:        item.Lot,
			MovementKind:           repository.MovementEdited,
			Quantity:               abs(item.PhysicalExistence - priorPhysical),
			PhysicalExistenceAfter: item.PhysicalExistence,
			ActorID:                actorID,
			WarehouseLabel:         item.WarehouseLabel,
		})
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// DeleteItem writes the final DELETED ledger row (quantity is the prior
// physical existence, resulting existence zero) and removes the item.
// No operation is valid on the item afterwards.
func (s *ReconciliationService) DeleteItem(ctx context.Context, actorID string, key repository.ItemKey) error {
	var item *repository.InventoryItem

	err := s.withConflictRetry(ctx, func(tx *sqlx.Tx) error {
		var err error
		item, err = s.items.GetByKeyForUpdateTx(ctx, tx, key)
		if err != nil {
			return err
		}

		if err := s.ledger.AppendTx(ctx, tx, &repository.LedgerEntry{
			ItemCode:               item.Code,
			Description:            item.Description,
			LotOrPartNumber:        item.Lot,
			MovementKind:           repository.MovementDeleted,
			Quantity:               item.PhysicalExistence,
			PhysicalExistenceAfter: 0,
			ActorID:                actorID,
			WarehouseLabel:         item.WarehouseLabel,
		}); err != nil {
			return err
		}

		return s.items.DeleteTx(ctx, tx, item.ID)
	})
	if err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.PublishItemDeleted(ctx, item.Code, item.Lot, actorID)
	}

	return nil
}

// DisposeRetained processes the retained pool of a chemical lot:
// returnToStock units go back to physical existence, permanentExit units
// leave the system-recorded stock for good.
func (s *ReconciliationService) DisposeRetained(ctx context.Context, actorID string, key repository.ItemKey, returnToStock, permanentExit int) (*repository.InventoryItem, error) {
	if returnToStock < 0 || permanentExit < 0 {
		return nil, errors.InvalidAmount("disposition amounts must not be negative")
	}
	if returnToStock+permanentExit == 0 {
		return nil, errors.InvalidAmount("disposition must process at least one unit")
	}

	var item *repository.InventoryItem

	err := s.withConflictRetry(ctx, func(tx *sqlx.Tx) error {
		var err error
		item, err = s.items.GetByKeyForUpdateTx(ctx, tx, key)
		if err != nil {
			return err
		}

		if !item.IsChemical() {
			return errors.BadRequest("retained disposition applies to chemical lots only")
		}
		if returnToStock+permanentExit > item.Retained {
			return errors.InvalidAmount("disposition exceeds retained stock")
		}
		if permanentExit > item.SystemExistence {
			return errors.InvalidAmount("permanent exit exceeds system existence")
		}

		item.PhysicalExistence += returnToStock
		item.SystemExistence -= permanentExit
		item.Retained -= returnToStock + permanentExit
		item.Difference = abs(item.PhysicalExistence - item.SystemExistence)
		item.LastMovementKind = repository.MovementEdited
		item.ReportedBy = actorID

		if err := s.items.UpdateTx(ctx, tx, item); err != nil {
			return err
		}

		return s.ledger.AppendTx(ctx, tx, &repository.LedgerEntry{
			ItemCode:               item.Code,
			Description:            item.Description,
			LotOrPartNumber:        item.Lot,
			MovementKind:           repository.MovementRetained,
			Quantity:               returnToStock + permanentExit,
			PhysicalExistenceAfter: item.PhysicalExistence,
			ActorID:                actorID,
			WarehouseLabel:         item.WarehouseLabel,
		})
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// raiseIfDepletedTx creates a stock-depleted notification unless one was
// already created for the item code within the dedup window. Returns
// whether a new notification was created.
func (s *ReconciliationService) raiseIfDepletedTx(ctx context.Context, tx *sqlx.Tx, itemCode int, description string) (bool, error) {
	since := time.Now().Add(-notificationDedupWindow)

	exists, err := s.notifications.ExistsSinceTx(ctx, tx, itemCode, since)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := s.notifications.CreateTx(ctx, tx, &repository.Notification{
		ItemCode:    itemCode,
		Description: description,
	}); err != nil {
		return false, err
	}

	return true, nil
}

// withConflictRetry runs fn in a transaction, retrying serialization and
// deadlock failures a bounded number of times. Any other error is
// surfaced immediately.
func (s *ReconciliationService) withConflictRetry(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		err = s.db.Transaction(ctx, fn)
		if err == nil || !database.IsRetryableConflict(err) {
			return err
		}
		s.logger.Warn().
			Int("attempt", attempt).
			Err(err).
			Msg("transaction conflict, retrying")
	}
	return errors.TransactionConflict()
}

func validateChemicalDates(expiry, ingest *time.Time) error {
	if expiry != nil && ingest != nil && !expiry.After(*ingest) {
		return errors.InvalidDateRange("expiry date must be after ingest date")
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
