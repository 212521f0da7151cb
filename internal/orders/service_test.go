package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/timele/timele-backend/internal/cart"
	"github.com/timele/timele-backend/internal/catalog"
	"github.com/timele/timele-backend/pkg/db"
	"github.com/timele/timele-backend/pkg/db/models"
	"github.com/timele/timele-backend/pkg/enums"
	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/pagination"
)

var testDBCounter int

type fixture struct {
	conn    *gorm.DB
	client  *db.Client
	svc     Service
	cartSvc cart.Service
	owner   cart.Owner
	at      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:orders_test_%d?mode=memory&cache=shared", testDBCounter)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Aisle{},
		&models.Department{},
		&models.Product{},
		&models.ProductEnriched{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	))

	require.NoError(t, conn.Create(&models.Aisle{ID: 1, Name: "fresh fruits"}).Error)
	require.NoError(t, conn.Create(&models.Department{ID: 4, Name: "produce"}).Error)
	require.NoError(t, conn.Create(&[]models.Product{
		{ID: 10, Name: "Organic Banana", AisleID: 1, DepartmentID: 4},
		{ID: 11, Name: "Honeycrisp Apple", AisleID: 1, DepartmentID: 4},
	}).Error)
	price := decimal.RequireFromString("2.49")
	require.NoError(t, conn.Create(&models.ProductEnriched{ProductID: 10, Price: &price}).Error)

	user := &models.User{
		ExternalID:                uuid.New(),
		Email:                     "ada@example.com",
		PasswordHash:              "x",
		FirstName:                 "Ada",
		LastName:                  "Byron",
		OrderNotificationsStartAt: time.Now().UTC(),
		OrderNotificationsNextAt:  time.Now().UTC(),
	}
	require.NoError(t, conn.Create(user).Error)

	f := &fixture{
		conn:   conn,
		client: db.NewWithConn(conn),
		owner:  cart.Owner{InternalID: user.InternalID, ExternalID: user.ExternalID},
		at:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.at }

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	f.cartSvc, err = cart.NewService(f.client, cart.NewRepository(conn), catalogSvc, now)
	require.NoError(t, err)
	f.svc, err = NewService(f.client, NewRepository(conn), cart.NewRepository(conn), catalogSvc, now)
	require.NoError(t, err)
	return f
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	_, err := f.cartSvc.Replace(context.Background(), f.owner, []cart.ItemInput{
		{ProductID: 10, Quantity: 2},
		{ProductID: 11, Quantity: 1},
	})
	require.NoError(t, err)
}

func TestCheckoutConvertsCartToPendingOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	view, err := f.svc.Checkout(context.Background(), f.owner)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, view.OrderID, int64(3422000))
	assert.Equal(t, int64(1), view.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, view.Status)
	assert.Equal(t, 3, view.TotalItems)
	// 2 × 2.49 priced + 1 unpriced item at 0.
	assert.Equal(t, "4.98", view.TotalPrice.StringFixed(2))
	require.NotNil(t, view.UserID)
	assert.Equal(t, f.owner.ExternalID, *view.UserID)

	require.Len(t, view.Items, 2)
	assert.Equal(t, 10, view.Items[0].ProductID)
	assert.Equal(t, 1, view.Items[0].AddToCartOrder)

	require.Len(t, view.History, 1)
	assert.Equal(t, enums.OrderStatusPending, view.History[0].Status)
	require.NotNil(t, view.History[0].Note)
	assert.Equal(t, "Order created", *view.History[0].Note)
	assert.Nil(t, view.History[0].ChangedBy)

	// Cart items are gone but the cart row survives.
	cartView, err := f.cartSvc.Get(context.Background(), f.owner)
	require.NoError(t, err)
	assert.NotZero(t, cartView.CartID)
	assert.Empty(t, cartView.Items)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	// No cart row at all.
	_, err := f.svc.Checkout(context.Background(), f.owner)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeEmptyCart, typed.Code())

	// Cart row with zero items behaves the same.
	_, err = f.cartSvc.Create(context.Background(), f.owner, nil)
	require.NoError(t, err)
	_, err = f.svc.Checkout(context.Background(), f.owner)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeEmptyCart, typed.Code())
}

func TestCheckoutAssignsPerUserOrderNumbers(t *testing.T) {
	f := newFixture(t)

	f.fillCart(t)
	first, err := f.svc.Checkout(context.Background(), f.owner)
	require.NoError(t, err)

	f.fillCart(t)
	second, err := f.svc.Checkout(context.Background(), f.owner)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.OrderNumber)
	assert.Equal(t, int64(2), second.OrderNumber)
	assert.Greater(t, second.OrderID, first.OrderID)
}

type failingHistoryRepo struct {
	Repository
}

func (r *failingHistoryRepo) WithTx(tx *gorm.DB) Repository {
	return &failingHistoryRepo{Repository: r.Repository.WithTx(tx)}
}

func (r *failingHistoryRepo) AppendHistory(ctx context.Context, row *models.OrderStatusHistory) error {
	return fmt.Errorf("injected history failure")
}

func TestCheckoutRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(f.conn))
	require.NoError(t, err)
	broken, err := NewService(f.client,
		&failingHistoryRepo{Repository: NewRepository(f.conn)},
		cart.NewRepository(f.conn), catalogSvc, nil)
	require.NoError(t, err)

	_, err = broken.Checkout(context.Background(), f.owner)
	require.Error(t, err)

	// Cart untouched, no order or history rows left behind.
	cartView, err := f.cartSvc.Get(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Len(t, cartView.Items, 2)

	var orderCount, historyCount int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, f.conn.Model(&models.OrderStatusHistory{}).Count(&historyCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, historyCount)
}

func TestDirectCreate(t *testing.T) {
	f := newFixture(t)

	street := "12 Mill Lane"
	view, err := f.svc.Create(context.Background(), f.owner,
		[]ItemInput{{ProductID: 10, Quantity: 3}},
		Delivery{StreetAddress: &street})
	require.NoError(t, err)

	assert.Equal(t, 3, view.TotalItems)
	assert.Equal(t, "7.47", view.TotalPrice.StringFixed(2))
	require.NotNil(t, view.StreetAddress)
	assert.Equal(t, street, *view.StreetAddress)

	// The direct path never touches the cart.
	cartView, err := f.cartSvc.Get(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Zero(t, cartView.CartID)
}

func TestDirectCreateUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.owner,
		[]ItemInput{{ProductID: 999, Quantity: 1}}, Delivery{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidInput, typed.Code())
}

func TestTransitionWritesHistory(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	created, err := f.svc.Checkout(context.Background(), f.owner)
	require.NoError(t, err)

	f.at = f.at.Add(time.Hour)
	note := "Picked by warehouse"
	view, err := f.svc.Transition(context.Background(), created.OrderID,
		enums.OrderStatusProcessing, "system", &note)
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusProcessing, view.Status)
	require.Len(t, view.History, 2)
	assert.Equal(t, enums.OrderStatusPending, view.History[0].Status)
	assert.Equal(t, enums.OrderStatusProcessing, view.History[1].Status)
	require.NotNil(t, view.History[1].ChangedBy)
	assert.Equal(t, "system", *view.History[1].ChangedBy)
	assert.True(t, view.History[0].ChangedAt.Before(view.History[1].ChangedAt))
}

func TestTransitionRejectsIllegalMoves(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	created, err := f.svc.Checkout(context.Background(), f.owner)
	require.NoError(t, err)

	// pending → delivered skips the machine.
	_, err = f.svc.Transition(context.Background(), created.OrderID,
		enums.OrderStatusDelivered, "system", nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeIllegalTransition, typed.Code())

	// Re-applying the current status is rejected too.
	_, err = f.svc.Transition(context.Background(), created.OrderID,
		enums.OrderStatusPending, "system", nil)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeIllegalTransition, typed.Code())
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	created, err := f.svc.Checkout(context.Background(), f.owner)
	require.NoError(t, err)

	_, err = f.svc.Transition(context.Background(), created.OrderID,
		enums.OrderStatusCancelled, "system", nil)
	require.NoError(t, err)

	_, err = f.svc.Transition(context.Background(), created.OrderID,
		enums.OrderStatusProcessing, "system", nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeIllegalTransition, typed.Code())
}

func TestGetUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), 999999)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListForUserPaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		f.fillCart(t)
		f.at = f.at.Add(time.Hour)
		_, err := f.svc.Checkout(context.Background(), f.owner)
		require.NoError(t, err)
	}

	result, err := f.svc.ListForUser(context.Background(), f.owner, pagination.Params{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.Page.Total)
	require.Len(t, result.Orders, 2)
	assert.Equal(t, int64(3), result.Orders[0].OrderNumber)
	assert.True(t, result.Page.HasNext)
	require.Len(t, result.Orders[0].Items, 2)
	require.NotNil(t, result.Orders[0].UserID)
	assert.Equal(t, f.owner.ExternalID, *result.Orders[0].UserID)
}
