package testutil

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	inventoryrepo "github.com/inelac/inventory-backend/internal/inventory/repository"
	userrepo "github.com/inelac/inventory-backend/internal/user/repository"
)

// ChemicalItem builds a chemical lot with plausible random data.
// Counters start balanced so difference is zero.
func ChemicalItem() *inventoryrepo.InventoryItem {
	existence := gofakeit.Number(1, 500)
	expiry := time.Now().AddDate(1, 0, 0)
	ingest := time.Now().AddDate(0, -1, 0)

	return &inventoryrepo.InventoryItem{
		ID:                uuid.New().String(),
		ItemType:          inventoryrepo.ItemTypeChemical,
		Code:              gofakeit.Number(1000, 9999),
		Lot:               gofakeit.LetterN(2) + gofakeit.DigitN(4),
		Description:       gofakeit.ProductName(),
		Unit:              gofakeit.RandomString([]string{"kg", "l", "pcs"}),
		PhysicalExistence: existence,
		SystemExistence:   existence,
		Difference:        0,
		Retained:          0,
		Liberated:         true,
		ExpiryDate:        &expiry,
		IngestDate:        &ingest,
		WarehouseLabel:    gofakeit.RandomString([]string{"MP", "PT"}),
		ReportedBy:        uuid.New().String(),
		LastMovementKind:  inventoryrepo.MovementNewEntry,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

// SparePartItem builds a spare-part entry with plausible random data.
func SparePartItem() *inventoryrepo.InventoryItem {
	existence := gofakeit.Number(1, 100)

	return &inventoryrepo.InventoryItem{
		ID:                uuid.New().String(),
		ItemType:          inventoryrepo.ItemTypeSparePart,
		Code:              gofakeit.Number(1000, 9999),
		Description:       gofakeit.ProductName(),
		Unit:              "pcs",
		PhysicalExistence: existence,
		SystemExistence:   existence,
		Difference:        0,
		WarehouseLabel:    "RP",
		ReportedBy:        uuid.New().String(),
		LastMovementKind:  inventoryrepo.MovementNewEntry,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

// User builds an active account with plausible random data.
// The password hash does not correspond to any known password.
func User() *userrepo.User {
	return &userrepo.User{
		ID:           uuid.New().String(),
		Username:     gofakeit.Username(),
		Name:         gofakeit.Name(),
		Email:        gofakeit.Email(),
		Role:         gofakeit.RandomString([]string{"administrator", "supervisor", "dispatcher"}),
		PasswordHash: "$2a$10$" + gofakeit.LetterN(53),
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}
