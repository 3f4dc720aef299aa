package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/pkg/database"
	"github.com/inelac/inventory-backend/pkg/logger"
	"github.com/inelac/inventory-backend/pkg/testutil"
)

func newTestNotifications(t *testing.T) (*NotificationService, *testutil.MockDB) {
	t.Helper()

	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	log := logger.New("notification-test", "development")
	db := database.NewWithDB(mockDB.DB, log)

	return NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewItemRepository(db),
		log,
	), mockDB
}

func TestListRecentDefaultsToDedupWindow(t *testing.T) {
	svc, mockDB := newTestNotifications(t)

	mockDB.Mock.ExpectQuery("FROM stock_notifications").
		WillReturnRows(testutil.MockRows("id", "item_code", "description", "created_at").
			AddRow("n1", 4711, "citric acid", time.Now()))

	notifications, err := svc.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, 4711, notifications[0].ItemCode)

	mockDB.ExpectationsWereMet(t)
}

func TestListCurrentlyDepleted(t *testing.T) {
	svc, mockDB := newTestNotifications(t)

	depleted := testutil.ChemicalItem()
	depleted.PhysicalExistence = 0

	mockDB.Mock.ExpectQuery("physical_existence = 0").
		WillReturnRows(itemRow(depleted))

	items, err := svc.ListCurrentlyDepleted(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, depleted.Code, items[0].Code)

	mockDB.ExpectationsWereMet(t)
}
