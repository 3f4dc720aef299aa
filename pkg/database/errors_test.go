package database

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/inelac/inventory-backend/pkg/errors"
)

func TestIsRetryableConflict(t *testing.T) {
	assert.True(t, IsRetryableConflict(&pq.Error{Code: "40001"}))
	assert.True(t, IsRetryableConflict(&pq.Error{Code: "40P01"}))
	assert.True(t, IsRetryableConflict(fmt.Errorf("wrapped: %w", &pq.Error{Code: "40001"})))

	assert.False(t, IsRetryableConflict(&pq.Error{Code: "23505"}))
	assert.False(t, IsRetryableConflict(errors.NotFound("item")))
	assert.False(t, IsRetryableConflict(nil))
}

func TestMapPQErrorUniqueViolation(t *testing.T) {
	err := MapPQError(&pq.Error{Code: "23505", Constraint: "inventory_items_code_lot_key"})
	assert.True(t, errors.Is(err, errors.ErrDuplicate))
	assert.Contains(t, err.Message, "code and lot")
}

func TestMapPQErrorCheckConstraints(t *testing.T) {
	err := MapPQError(&pq.Error{Code: "23514", Constraint: "inventory_items_existence_non_negative"})
	assert.True(t, errors.Is(err, errors.ErrInvalidAmount))

	err = MapPQError(&pq.Error{Code: "23514", Constraint: "inventory_items_retained_non_negative"})
	assert.True(t, errors.Is(err, errors.ErrInvalidAmount))

	err = MapPQError(&pq.Error{Code: "23514", Constraint: "users_role_valid"})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestMapPQErrorPassesThroughUnknown(t *testing.T) {
	assert.Nil(t, MapPQError(nil))
	assert.Nil(t, MapPQError(fmt.Errorf("not a pq error")))
	assert.Nil(t, MapPQError(&pq.Error{Code: "57014"}))
}
