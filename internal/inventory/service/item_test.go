package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inelac/inventory-backend/pkg/testutil"
)

func TestDecorateDaysOfLife(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	item := testutil.ChemicalItem()
	expiry := now.AddDate(0, 0, 30)
	item.ExpiryDate = &expiry

	decorateDaysOfLife(item, now)
	if assert.NotNil(t, item.DaysOfLife) {
		assert.Equal(t, 30, *item.DaysOfLife)
	}
}

func TestDecorateDaysOfLifeExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	item := testutil.ChemicalItem()
	expiry := now.AddDate(0, 0, -10)
	item.ExpiryDate = &expiry

	decorateDaysOfLife(item, now)
	if assert.NotNil(t, item.DaysOfLife) {
		assert.Equal(t, 0, *item.DaysOfLife)
	}
}

func TestDecorateDaysOfLifeSkipsSparePartsAndMissingDates(t *testing.T) {
	now := time.Now()

	part := testutil.SparePartItem()
	decorateDaysOfLife(part, now)
	assert.Nil(t, part.DaysOfLife)

	chem := testutil.ChemicalItem()
	chem.ExpiryDate = nil
	decorateDaysOfLife(chem, now)
	assert.Nil(t, chem.DaysOfLife)
}
