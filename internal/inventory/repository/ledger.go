package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/inelac/inventory-backend/pkg/database"
	"github.com/inelac/inventory-backend/pkg/errors"
)

// LedgerEntry represents one row of the movement ledger.
// Entries are append-only: they are never updated or deleted.
type LedgerEntry struct {
	ID                     string    `db:"id" json:"id"`
	ItemCode               int       `db:"item_code" json:"item_code"`
	Description            string    `db:"description" json:"description"`
	LotOrPartNumber        string    `db:"lot_or_part_number" json:"lot_or_part_number"`
	MovementKind           string    `db:"movement_kind" json:"movement_kind"`
	Quantity               int       `db:"quantity" json:"quantity"`
	PhysicalExistenceAfter int       `db:"physical_existence_after" json:"physical_existence_after"`
	ActorID                string    `db:"actor_id" json:"actor_id"`
	WarehouseLabel         string    `db:"warehouse_label" json:"warehouse_label"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
}

// LedgerRepository handles movement ledger persistence.
// Append is transaction-bound only: a ledger row commits together with the
// item mutation that produced it, or not at all.
type LedgerRepository struct {
	db *database.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// AppendTx appends a ledger entry within the given transaction
func (r *LedgerRepository) AppendTx(ctx context.Context, tx *sqlx.Tx, entry *LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO movement_ledger (
			id, item_code, description, lot_or_part_number, movement_kind,
			quantity, physical_existence_after, actor_id, warehouse_label
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	return tx.QueryRowxContext(ctx, query,
		entry.ID, entry.ItemCode, entry.Description, entry.LotOrPartNumber,
		entry.MovementKind, entry.Quantity, entry.PhysicalExistenceAfter,
		entry.ActorID, entry.WarehouseLabel,
	).Scan(&entry.CreatedAt)
}

// List lists ledger entries in reverse-chronological order with pagination
func (r *LedgerRepository) List(ctx context.Context, page, perPage int) ([]*LedgerEntry, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM movement_ledger`); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, item_code, description, lot_or_part_number, movement_kind,
		       quantity, physical_existence_after, actor_id, warehouse_label, created_at
		FROM movement_ledger
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var entries []*LedgerEntry
	if err := r.db.SelectContext(ctx, &entries, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// QueryRange returns all entries between start and end, inclusive of both
// bounds at day granularity, oldest first. Used for exports.
func (r *LedgerRepository) QueryRange(ctx context.Context, start, end time.Time) ([]*LedgerEntry, error) {
	if start.After(end) {
		return nil, errors.InvalidRange("start date must not be after end date")
	}

	// Widen to whole days: [start 00:00, end+1d 00:00)
	from := start.Truncate(24 * time.Hour)
	to := end.Truncate(24 * time.Hour).Add(24 * time.Hour)

	query := `
		SELECT id, item_code, description, lot_or_part_number, movement_kind,
		       quantity, physical_existence_after, actor_id, warehouse_label, created_at
		FROM movement_ledger
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
	`

	var entries []*LedgerEntry
	if err := r.db.SelectContext(ctx, &entries, query, from, to); err != nil {
		return nil, err
	}

	return entries, nil
}
