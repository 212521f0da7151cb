package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/timele/timele-backend/pkg/db/models"
	"github.com/timele/timele-backend/pkg/enums"
	pkgerrors "github.com/timele/timele-backend/pkg/errors"
)

var testDBCounter int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:notifications_test_%d?mode=memory&cache=shared", testDBCounter)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderStatusHistory{},
	))
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, start time.Time, days int) *models.User {
	t.Helper()
	user := &models.User{
		ExternalID:                    uuid.New(),
		Email:                         "ada@example.com",
		PasswordHash:                  "x",
		FirstName:                     "Ada",
		LastName:                      "Byron",
		DaysBetweenOrderNotifications: days,
		OrderNotificationsStartAt:     start,
		OrderNotificationsNextAt:      start,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedOrderWithHistory(t *testing.T, conn *gorm.DB, userID int64, orderID int64, changedAt time.Time, statuses ...enums.OrderStatus) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Order{
		ID:          orderID,
		UserID:      &userID,
		OrderNumber: orderID % 100,
		Status:      statuses[len(statuses)-1],
	}).Error)
	for i, status := range statuses {
		require.NoError(t, conn.Create(&models.OrderStatusHistory{
			OrderID:   orderID,
			Status:    status,
			ChangedAt: changedAt.Add(time.Duration(i) * time.Hour),
		}).Error)
	}
}

func TestListReturnsEventsNewerThanLastViewing(t *testing.T) {
	conn := newTestDB(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	user := seedUser(t, conn, start, 7)

	viewedAt := start.Add(30 * time.Minute)
	require.NoError(t, conn.Model(user).Update("last_notifications_viewed_at", viewedAt).Error)

	// One event before the viewing instant, two after.
	seedOrderWithHistory(t, conn, user.InternalID, 3422001, start,
		enums.OrderStatusPending, enums.OrderStatusProcessing, enums.OrderStatusShipped)

	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)

	result, err := svc.List(context.Background(), user.ExternalID)
	require.NoError(t, err)

	require.Len(t, result.Events, 2)
	assert.Equal(t, enums.OrderStatusProcessing, result.Events[0].Status)
	assert.Equal(t, enums.OrderStatusShipped, result.Events[1].Status)
	assert.True(t, result.Events[0].ChangedAt.Before(result.Events[1].ChangedAt))
}

func TestListNeverViewedReturnsFullHistory(t *testing.T) {
	conn := newTestDB(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	user := seedUser(t, conn, start, 7)
	seedOrderWithHistory(t, conn, user.InternalID, 3422001, start, enums.OrderStatusPending)

	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)

	result, err := svc.List(context.Background(), user.ExternalID)
	require.NoError(t, err)
	assert.Len(t, result.Events, 1)
}

func TestListExcludesOtherUsersOrders(t *testing.T) {
	conn := newTestDB(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	user := seedUser(t, conn, start, 7)

	other := &models.User{
		ExternalID:                uuid.New(),
		Email:                     "grace@example.com",
		PasswordHash:              "x",
		FirstName:                 "Grace",
		LastName:                  "Hopper",
		OrderNotificationsStartAt: start,
		OrderNotificationsNextAt:  start,
	}
	require.NoError(t, conn.Create(other).Error)
	seedOrderWithHistory(t, conn, other.InternalID, 3422002, start, enums.OrderStatusPending)

	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)

	result, err := svc.List(context.Background(), user.ExternalID)
	require.NoError(t, err)
	assert.Empty(t, result.Events)
}

func TestMarkViewedStampsAndClearsPendingFlag(t *testing.T) {
	conn := newTestDB(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	user := seedUser(t, conn, start, 7)
	require.NoError(t, conn.Model(user).Update("pending_order_notification", true).Error)

	at := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	svc, err := NewService(NewRepository(conn), func() time.Time { return at })
	require.NoError(t, err)

	viewedAt, err := svc.MarkViewed(context.Background(), user.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, at, viewedAt)

	var reloaded models.User
	require.NoError(t, conn.First(&reloaded, "internal_id = ?", user.InternalID).Error)
	require.NotNil(t, reloaded.LastNotificationsViewedAt)
	assert.Equal(t, at.Unix(), reloaded.LastNotificationsViewedAt.Unix())
	assert.False(t, reloaded.PendingOrderNotification)
}

func TestListUnknownUser(t *testing.T) {
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)

	_, err = svc.List(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
