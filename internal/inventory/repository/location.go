package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/inelac/inventory-backend/pkg/database"
	"github.com/inelac/inventory-backend/pkg/errors"
)

// Location represents a rack/position/row slot in a warehouse
type Location struct {
	ID        string    `db:"id" json:"id"`
	Warehouse string    `db:"warehouse" json:"warehouse"`
	Rack      string    `db:"rack" json:"rack"`
	Position  string    `db:"position" json:"position"`
	RowLabel  string    `db:"row_label" json:"row_label"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LocationRepository handles location persistence
type LocationRepository struct {
	db *database.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *database.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Create creates a new location
func (r *LocationRepository) Create(ctx context.Context, loc *Location) error {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}

	query := `
		INSERT INTO locations (id, warehouse, rack, position, row_label, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		loc.ID, loc.Warehouse, loc.Rack, loc.Position, loc.RowLabel, loc.IsActive,
	).Scan(&loc.CreatedAt, &loc.UpdatedAt)

	if mapped := database.MapPQError(err); mapped != nil {
		return mapped
	}
	return err
}

// GetByID gets a location by ID
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*Location, error) {
	var loc Location
	query := `
		SELECT id, warehouse, rack, position, row_label, is_active, created_at, updated_at
		FROM locations WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &loc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("location")
		}
		return nil, err
	}
	return &loc, nil
}

// List lists all locations ordered by warehouse, rack and position
func (r *LocationRepository) List(ctx context.Context) ([]*Location, error) {
	var locations []*Location
	query := `
		SELECT id, warehouse, rack, position, row_label, is_active, created_at, updated_at
		FROM locations
		ORDER BY warehouse, rack, position, row_label
	`
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, err
	}
	return locations, nil
}

// Update updates a location
func (r *LocationRepository) Update(ctx context.Context, loc *Location) error {
	query := `
		UPDATE locations SET
			warehouse = $2, rack = $3, position = $4, row_label = $5, is_active = $6,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		loc.ID, loc.Warehouse, loc.Rack, loc.Position, loc.RowLabel, loc.IsActive,
	)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("location")
	}

	return nil
}

// Delete deletes a location
func (r *LocationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return mapped
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("location")
	}

	return nil
}
