package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/inelac/inventory-backend/pkg/database"
	"github.com/inelac/inventory-backend/pkg/errors"
)

// Item types
const (
	ItemTypeChemical  = "chemical"
	ItemTypeSparePart = "spare_part"
)

// Movement kinds. RETAINED_DISPOSITION appears only in the ledger; the
// item itself records EDITED for a retained disposition.
const (
	MovementNewEntry = "NEW_ENTRY"
	MovementInbound  = "INBOUND"
	MovementOutbound = "OUTBOUND"
	MovementEdited   = "EDITED"
	MovementDeleted  = "DELETED"
	MovementRetained = "RETAINED_DISPOSITION"
)

// ItemKey identifies an inventory item: code alone for spare parts,
// code plus lot for chemicals.
type ItemKey struct {
	Type string
	Code int
	Lot  string
}

// InventoryItem represents a chemical lot or a spare-part entry
type InventoryItem struct {
	ID                string     `db:"id" json:"id"`
	ItemType          string     `db:"item_type" json:"item_type"`
	Code              int        `db:"code" json:"code"`
	Lot               string     `db:"lot" json:"lot,omitempty"`
	Description       string     `db:"description" json:"description"`
	Unit              string     `db:"unit" json:"unit"`
	PhysicalExistence int        `db:"physical_existence" json:"physical_existence"`
	SystemExistence   int        `db:"system_existence" json:"system_existence"`
	Difference        int        `db:"difference" json:"difference"`
	Retained          int        `db:"retained" json:"retained"`
	Liberated         bool       `db:"liberated" json:"liberated"`
	ExpiryDate        *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	IngestDate        *time.Time `db:"ingest_date" json:"ingest_date,omitempty"`
	LocationID        *string    `db:"location_id" json:"location_id,omitempty"`
	WarehouseLabel    string     `db:"warehouse_label" json:"warehouse_label"`
	ReportedBy        string     `db:"reported_by" json:"reported_by"`
	LastMovementKind  string     `db:"last_movement_kind" json:"last_movement_kind"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
	// Computed at read time, never stored
	DaysOfLife *int `db:"-" json:"days_of_life,omitempty"`
}

// Key returns the identifying key of the item.
func (i *InventoryItem) Key() ItemKey {
	return ItemKey{Type: i.ItemType, Code: i.Code, Lot: i.Lot}
}

// IsChemical reports whether the item is a chemical lot.
func (i *InventoryItem) IsChemical() bool {
	return i.ItemType == ItemTypeChemical
}

const itemColumns = `
	id, item_type, code, lot, description, unit,
	physical_existence, system_existence, difference, retained, liberated,
	expiry_date, ingest_date, location_id, warehouse_label, reported_by,
	last_movement_kind, created_at, updated_at`

// ItemRepository handles inventory item persistence. All mutating methods
// are transaction-bound so the reconciliation engine can pair every write
// with its ledger append.
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// CreateTx inserts a new inventory item within the given transaction
func (r *ItemRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, item *InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO inventory_items (
			id, item_type, code, lot, description, unit,
			physical_existence, system_existence, difference, retained, liberated,
			expiry_date, ingest_date, location_id, warehouse_label, reported_by,
			last_movement_kind
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRowxContext(ctx, query,
		item.ID, item.ItemType, item.Code, item.Lot, item.Description, item.Unit,
		item.PhysicalExistence, item.SystemExistence, item.Difference, item.Retained,
		item.Liberated, item.ExpiryDate, item.IngestDate, item.LocationID,
		item.WarehouseLabel, item.ReportedBy, item.LastMovementKind,
	).Scan(&item.CreatedAt, &item.UpdatedAt)

	if mapped := database.MapPQError(err); mapped != nil {
		return mapped
	}
	return err
}

// GetByID gets an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*InventoryItem, error) {
	var item InventoryItem
	query := `SELECT` + itemColumns + ` FROM inventory_items WHERE id = $1`
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("item")
		}
		return nil, err
	}
	return &item, nil
}

// GetByKey gets an item by its identifying key
func (r *ItemRepository) GetByKey(ctx context.Context, key ItemKey) (*InventoryItem, error) {
	var item InventoryItem
	query := `SELECT` + itemColumns + ` FROM inventory_items WHERE item_type = $1 AND code = $2 AND lot = $3`
	if err := r.db.GetContext(ctx, &item, query, key.Type, key.Code, key.Lot); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("item")
		}
		return nil, err
	}
	return &item, nil
}

// GetByKeyForUpdateTx locks and returns an item within the given transaction.
// The row lock serializes concurrent movements against the same item.
func (r *ItemRepository) GetByKeyForUpdateTx(ctx context.Context, tx *sqlx.Tx, key ItemKey) (*InventoryItem, error) {
	var item InventoryItem
	query := `SELECT` + itemColumns + ` FROM inventory_items WHERE item_type = $1 AND code = $2 AND lot = $3 FOR UPDATE`
	if err := tx.GetContext(ctx, &item, query, key.Type, key.Code, key.Lot); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("item")
		}
		return nil, err
	}
	return &item, nil
}

// List lists inventory items with pagination and optional type filter
func (r *ItemRepository) List(ctx context.Context, itemType string, page, perPage int) ([]*InventoryItem, int64, error) {
	var total int64
	args := []interface{}{}

	countQuery := `SELECT COUNT(*) FROM inventory_items`
	query := `SELECT` + itemColumns + ` FROM inventory_items`

	if itemType != "" {
		countQuery += ` WHERE item_type = $1`
		query += ` WHERE item_type = $1`
		args = append(args, itemType)
	}

	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY code, lot`

	offset := (page - 1) * perPage
	if itemType != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, perPage, offset)

	var items []*InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// UpdateTx updates an item's full state within the given transaction
func (r *ItemRepository) UpdateTx(ctx context.Context, tx *sqlx.Tx, item *InventoryItem) error {
	query := `
		UPDATE inventory_items SET
			description = $2, unit = $3,
			physical_existence = $4, system_existence = $5, difference = $6,
			retained = $7, liberated = $8, expiry_date = $9, ingest_date = $10,
			location_id = $11, warehouse_label = $12, reported_by = $13,
			last_movement_kind = $14,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query,
		item.ID, item.Description, item.Unit,
		item.PhysicalExistence, item.SystemExistence, item.Difference,
		item.Retained, item.Liberated, item.ExpiryDate, item.IngestDate,
		item.LocationID, item.WarehouseLabel, item.ReportedBy,
		item.LastMovementKind,
	)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}

	return nil
}

// DeleteTx removes an item within the given transaction
func (r *ItemRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}

	return nil
}

// ListDepleted returns all items currently at zero physical existence
func (r *ItemRepository) ListDepleted(ctx context.Context) ([]*InventoryItem, error) {
	var items []*InventoryItem
	query := `SELECT` + itemColumns + ` FROM inventory_items WHERE physical_existence = 0 ORDER BY code, lot`
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, err
	}
	return items, nil
}

// GetAll returns all items, used by the dashboard aggregation
func (r *ItemRepository) GetAll(ctx context.Context) ([]*InventoryItem, error) {
	var items []*InventoryItem
	query := `SELECT` + itemColumns + ` FROM inventory_items ORDER BY code, lot`
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, err
	}
	return items, nil
}

// CountByLocation counts items referencing a location, used to refuse
// deleting a location still in use
func (r *ItemRepository) CountByLocation(ctx context.Context, locationID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM inventory_items WHERE location_id = $1`
	if err := r.db.GetContext(ctx, &count, query, locationID); err != nil {
		return 0, err
	}
	return count, nil
}
