package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/pkg/database"
	"github.com/inelac/inventory-backend/pkg/errors"
	"github.com/inelac/inventory-backend/pkg/logger"
	"github.com/inelac/inventory-backend/pkg/testutil"
)

const testActorID = "7f9c24e5-1df2-4a6c-9a41-2c1b3d4e5f60"

// recordingPublisher captures events for assertions.
type recordingPublisher struct {
	movements []repository.LedgerEntry
	depleted  []int
	deleted   []int
}

func (p *recordingPublisher) PublishMovementApplied(_ context.Context, _ *repository.InventoryItem, entry *repository.LedgerEntry) {
	p.movements = append(p.movements, *entry)
}

func (p *recordingPublisher) PublishStockDepleted(_ context.Context, itemCode int, _ string) {
	p.depleted = append(p.depleted, itemCode)
}

func (p *recordingPublisher) PublishItemDeleted(_ context.Context, itemCode int, _, _ string) {
	p.deleted = append(p.deleted, itemCode)
}

func newTestEngine(t *testing.T) (*ReconciliationService, *testutil.MockDB, *recordingPublisher) {
	t.Helper()

	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	log := logger.New("reconcile-test", "development")
	db := database.NewWithDB(mockDB.DB, log)

	items := repository.NewItemRepository(db)
	ledger := repository.NewLedgerRepository(db)
	notifications := repository.NewNotificationRepository(db)
	publisher := &recordingPublisher{}

	svc := NewReconciliationService(db, items, ledger, notifications, publisher, log)
	return svc, mockDB, publisher
}

func itemRowColumns() []string {
	return []string{
		"id", "item_type", "code", "lot", "description", "unit",
		"physical_existence", "system_existence", "difference", "retained", "liberated",
		"expiry_date", "ingest_date", "location_id", "warehouse_label", "reported_by",
		"last_movement_kind", "created_at", "updated_at",
	}
}

func itemRow(item *repository.InventoryItem) *sqlmock.Rows {
	return testutil.MockRows(itemRowColumns()...).AddRow(
		item.ID, item.ItemType, item.Code, item.Lot, item.Description, item.Unit,
		item.PhysicalExistence, item.SystemExistence, item.Difference, item.Retained,
		item.Liberated, item.ExpiryDate, item.IngestDate, item.LocationID,
		item.WarehouseLabel, item.ReportedBy, item.LastMovementKind,
		item.CreatedAt, item.UpdatedAt,
	)
}

func expectItemLock(m *testutil.MockDB, item *repository.InventoryItem) {
	m.Mock.ExpectQuery("FOR UPDATE").WillReturnRows(itemRow(item))
}

func expectItemUpdate(m *testutil.MockDB) {
	m.Mock.ExpectExec("UPDATE inventory_items").WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectLedgerAppend(m *testutil.MockDB) {
	m.Mock.ExpectQuery("INSERT INTO movement_ledger").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
}

func TestApplyMovementOutbound(t *testing.T) {
	svc, mockDB, publisher := newTestEngine(t)

	item := testutil.ChemicalItem()
	item.PhysicalExistence = 10
	item.SystemExistence = 8

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	expectItemUpdate(mockDB)
	expectLedgerAppend(mockDB)
	mockDB.ExpectCommit()

	updated, err := svc.ApplyMovement(context.Background(), testActorID, item.Key(), repository.MovementOutbound, 4)
	require.NoError(t, err)

	assert.Equal(t, 6, updated.PhysicalExistence)
	assert.Equal(t, 8, updated.SystemExistence)
	assert.Equal(t, 2, updated.Difference)
	assert.Equal(t, repository.MovementOutbound, updated.LastMovementKind)
	assert.Equal(t, testActorID, updated.ReportedBy)

	require.Len(t, publisher.movements, 1)
	assert.Equal(t, 4, publisher.movements[0].Quantity)
	assert.Equal(t, 6, publisher.movements[0].PhysicalExistenceAfter)
	assert.Empty(t, publisher.depleted)

	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementInbound(t *testing.T) {
	svc, mockDB, _ := newTestEngine(t)

	item := testutil.ChemicalItem()
	item.PhysicalExistence = 3
	item.SystemExistence = 3

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	expectItemUpdate(mockDB)
	expectLedgerAppend(mockDB)
	mockDB.ExpectCommit()

	updated, err := svc.ApplyMovement(context.Background(), testActorID, item.Key(), repository.MovementInbound, 7)
	require.NoError(t, err)

	assert.Equal(t, 10, updated.PhysicalExistence)
	assert.Equal(t, 7, updated.Difference)

	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementInsufficientStock(t *testing.T) {
	svc, mockDB, publisher := newTestEngine(t)

	item := testutil.ChemicalItem()
	item.PhysicalExistence = 3
	item.SystemExistence = 3

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	mockDB.ExpectRollback()

	_, err := svc.ApplyMovement(context.Background(), testActorID, item.Key(), repository.MovementOutbound, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "has 3 on hand")
	assert.Contains(t, appErr.Message, "move out 5")

	assert.Empty(t, publisher.movements)
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementInvalidQuantity(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	for _, quantity := range []int{0, -4} {
		_, err := svc.ApplyMovement(context.Background(), testActorID, repository.ItemKey{}, repository.MovementOutbound, quantity)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidAmount))
	}
}

func TestApplyMovementUnknownKind(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	_, err := svc.ApplyMovement(context.Background(), testActorID, repository.ItemKey{}, "ADJUSTMENT", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestApplyMovementDepletionRaisesNotification(t *testing.T) {
	svc, mockDB, publisher := newTestEngine(t)

	item := testutil.ChemicalItem()
	item.PhysicalExistence = 5
	item.SystemExistence = 5

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	expectItemUpdate(mockDB)
	expectLedgerAppend(mockDB)
	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WithArgs(item.Code, testutil.AnyTime{}).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.Mock.ExpectQuery("INSERT INTO stock_notifications").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.ExpectCommit()

	updated, err := svc.ApplyMovement(context.Background(), testActorID, item.Key(), repository.MovementOutbound, 5)
	require.NoError(t, err)

	assert.Equal(t, 0, updated.PhysicalExistence)
	require.Len(t, publisher.depleted, 1)
	assert.Equal(t, item.Code, publisher.depleted[0])

	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementDepletionDeduplicated(t *testing.T) {
	svc, mockDB, publisher := newTestEngine(t)

	item := testutil.ChemicalItem()
	item.PhysicalExistence = 2
	item.SystemExistence = 2

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	expectItemUpdate(mockDB)
	expectLedgerAppend(mockDB)
	// A notification within the window suppresses a second one
	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(testutil.MockRows("exists").AddRow(true))
	mockDB.ExpectCommit()

	_, err := svc.ApplyMovement(context.Background(), testActorID, item.Key(), repository.MovementOutbound, 2)
	require.NoError(t, err)

	assert.Empty(t, publisher.depleted)
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementRetriesSerializationFailure(t *testing.T) {
	svc, mockDB, _ := newTestEngine(t)

	item := testutil.ChemicalItem()

	for i := 0; i < maxConflictRetries; i++ {
		mockDB.ExpectBegin()
		mockDB.Mock.ExpectQuery("FOR UPDATE").
			WillReturnError(&pq.Error{Code: "40001"})
		mockDB.ExpectRollback()
	}

	_, err := svc.ApplyMovement(context.Background(), testActorID, item.Key(), repository.MovementInbound, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTransactionConflict))

	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovementDoesNotRetryBusinessFailure(t *testing.T) {
	svc, mockDB, _ := newTestEngine(t)

	item := testutil.ChemicalItem()
	item.PhysicalExistence = 1
	item.SystemExistence = 1

	// A single attempt only: insufficient stock is not a retryable conflict
	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	mockDB.ExpectRollback()

	_, err := svc.ApplyMovement(context.Background(), testActorID, item.Key(), repository.MovementOutbound, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))

	mockDB.ExpectationsWereMet(t)
}

func TestDisposeRetained(t *testing.T) {
	svc, mockDB, _ := newTestEngine(t)

	item := testutil.ChemicalItem()
	item.PhysicalExistence = 10
	item.SystemExistence = 12
	item.Retained = 6

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	expectItemUpdate(mockDB)
	expectLedgerAppend(mockDB)
	mockDB.ExpectCommit()

	updated, err := svc.DisposeRetained(context.Background(), testActorID, item.Key(), 2, 3)
	require.NoError(t, err)

	assert.Equal(t, 12, updated.PhysicalExistence)
	assert.Equal(t, 9, updated.SystemExistence)
	assert.Equal(t, 1, updated.Retained)
	assert.Equal(t, 3, updated.Difference)
	assert.Equal(t, repository.MovementEdited, updated.LastMovementKind)

	mockDB.ExpectationsWereMet(t)
}

func TestDisposeRetainedNegativeAmounts(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	_, err := svc.DisposeRetained(context.Background(), testActorID, repository.ItemKey{}, -1, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidAmount))

	_, err = svc.DisposeRetained(context.Background(), testActorID, repository.ItemKey{}, 0, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidAmount))
}

func TestDisposeRetainedExceedsPool(t *testing.T) {
	svc, mockDB, _ := newTestEngine(t)

	item := testutil.ChemicalItem()
	item.Retained = 3

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	mockDB.ExpectRollback()

	_, err := svc.DisposeRetained(context.Background(), testActorID, item.Key(), 2, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidAmount))

	mockDB.ExpectationsWereMet(t)
}

func TestDisposeRetainedRejectsSparePart(t *testing.T) {
	svc, mockDB, _ := newTestEngine(t)

	item := testutil.SparePartItem()

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	mockDB.ExpectRollback()

	_, err := svc.DisposeRetained(context.Background(), testActorID, item.Key(), 1, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	mockDB.ExpectationsWereMet(t)
}

func TestEditItemRecomputesDifference(t *testing.T) {
	svc, mockDB, _ := newTestEngine(t)

	item := testutil.ChemicalItem()
	item.PhysicalExistence = 10
	item.SystemExistence = 10

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	expectItemUpdate(mockDB)
	expectLedgerAppend(mockDB)
	mockDB.ExpectCommit()

	physical := 7
	updated, err := svc.EditItem(context.Background(), testActorID, item.Key(), EditItemInput{
		PhysicalExistence: &physical,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, updated.PhysicalExistence)
	assert.Equal(t, 3, updated.Difference)
	assert.Equal(t, repository.MovementEdited, updated.LastMovementKind)

	mockDB.ExpectationsWereMet(t)
}

func TestEditItemInvalidDateRange(t *testing.T) {
	svc, mockDB, _ := newTestEngine(t)

	item := testutil.ChemicalItem()

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	mockDB.ExpectRollback()

	expiry := time.Now().AddDate(0, -2, 0) // before the ingest date
	_, err := svc.EditItem(context.Background(), testActorID, item.Key(), EditItemInput{
		ExpiryDate: &expiry,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidDateRange))

	mockDB.ExpectationsWereMet(t)
}

func TestEditItemNegativeExistence(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	physical := -1
	_, err := svc.EditItem(context.Background(), testActorID, repository.ItemKey{}, EditItemInput{
		PhysicalExistence: &physical,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidAmount))
}

func TestDeleteItemWritesFinalLedgerEntry(t *testing.T) {
	svc, mockDB, publisher := newTestEngine(t)

	item := testutil.ChemicalItem()
	item.PhysicalExistence = 4

	mockDB.ExpectBegin()
	expectItemLock(mockDB, item)
	expectLedgerAppend(mockDB)
	mockDB.Mock.ExpectExec("DELETE FROM inventory_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	err := svc.DeleteItem(context.Background(), testActorID, item.Key())
	require.NoError(t, err)

	require.Len(t, publisher.deleted, 1)
	assert.Equal(t, item.Code, publisher.deleted[0])

	mockDB.ExpectationsWereMet(t)
}

func TestDeleteItemNotFound(t *testing.T) {
	svc, mockDB, _ := newTestEngine(t)

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(testutil.MockRows(itemRowColumns()...))
	mockDB.ExpectRollback()

	err := svc.DeleteItem(context.Background(), testActorID, repository.ItemKey{Type: repository.ItemTypeChemical, Code: 1, Lot: "X"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	mockDB.ExpectationsWereMet(t)
}

func TestCreateItem(t *testing.T) {
	svc, mockDB, _ := newTestEngine(t)

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("INSERT INTO inventory_items").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))
	expectLedgerAppend(mockDB)
	mockDB.ExpectCommit()

	expiry := time.Now().AddDate(1, 0, 0)
	ingest := time.Now().AddDate(0, 0, -7)

	item, err := svc.CreateItem(context.Background(), testActorID, NewItemInput{
		ItemType:          repository.ItemTypeChemical,
		Code:              4711,
		Lot:               "AB1234",
		Description:       "citric acid",
		Unit:              "kg",
		PhysicalExistence: 20,
		SystemExistence:   18,
		ExpiryDate:        &expiry,
		IngestDate:        &ingest,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, item.Difference)
	assert.Equal(t, repository.MovementNewEntry, item.LastMovementKind)
	assert.Equal(t, testActorID, item.ReportedBy)

	mockDB.ExpectationsWereMet(t)
}

func TestCreateItemValidation(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	// Chemicals require a lot
	_, err := svc.CreateItem(context.Background(), testActorID, NewItemInput{
		ItemType: repository.ItemTypeChemical,
		Code:     1,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	// Negative counters
	_, err = svc.CreateItem(context.Background(), testActorID, NewItemInput{
		ItemType:          repository.ItemTypeChemical,
		Code:              1,
		Lot:               "L1",
		PhysicalExistence: -1,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidAmount))

	// Spare parts carry no lot
	_, err = svc.CreateItem(context.Background(), testActorID, NewItemInput{
		ItemType: repository.ItemTypeSparePart,
		Code:     1,
		Lot:      "L1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	// Expiry before ingest
	expiry := time.Now()
	ingest := time.Now().AddDate(0, 1, 0)
	_, err = svc.CreateItem(context.Background(), testActorID, NewItemInput{
		ItemType:   repository.ItemTypeChemical,
		Code:       1,
		Lot:        "L1",
		ExpiryDate: &expiry,
		IngestDate: &ingest,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidDateRange))
}
