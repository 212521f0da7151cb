package gatewayapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/timele/timele-backend/internal/cart"
	"github.com/timele/timele-backend/internal/catalog"
	"github.com/timele/timele-backend/internal/notifications"
	"github.com/timele/timele-backend/internal/orders"
	"github.com/timele/timele-backend/internal/users"
	"github.com/timele/timele-backend/pkg/config"
	"github.com/timele/timele-backend/pkg/db"
	"github.com/timele/timele-backend/pkg/db/models"
	"github.com/timele/timele-backend/pkg/logger"
)

var testDBCounter int

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:gatewayapi_test_%d?mode=memory&cache=shared", testDBCounter)
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
	require.NoError(t, conn.Create(&models.Product{ID: 10, Name: "Organic Banana", AisleID: 1, DepartmentID: 4}).Error)

	client := db.NewWithConn(conn)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	now := func() time.Time { return time.Now().UTC() }

	passwordCfg := config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	usersSvc, err := users.NewService(users.NewRepository(conn), passwordCfg, now)
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	cartSvc, err := cart.NewService(client, cart.NewRepository(conn), catalogSvc, now)
	require.NoError(t, err)
	ordersSvc, err := orders.NewService(client, orders.NewRepository(conn), cart.NewRepository(conn), catalogSvc, now)
	require.NoError(t, err)
	notifSvc, err := notifications.NewService(notifications.NewRepository(conn), now)
	require.NoError(t, err)

	router, err := NewRouter(RouterParams{
		Logger:        logg,
		Client:        client,
		Users:         usersSvc,
		Catalog:       catalogSvc,
		Cart:          cartSvc,
		Orders:        ordersSvc,
		Notifications: notifSvc,
	})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(payload, &body), "body: %s", payload)
	return body
}

func registerUser(t *testing.T, server *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, server.URL+"/users/register",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","password":"p@ss1234"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode(t, resp)
	return body["user_id"].(string)
}

func TestRegisterLoginFlow(t *testing.T) {
	server := newTestServer(t)

	userID := registerUser(t, server)
	assert.Regexp(t, `^[0-9a-f-]{36}$`, userID)

	resp := postJSON(t, server.URL+"/users/login", `{"email":"ada@example.com","password":"p@ss1234"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, userID, body["user_id"])
	assert.Equal(t, false, body["has_active_cart"])
}

func TestDuplicateEmailConflicts(t *testing.T) {
	server := newTestServer(t)
	registerUser(t, server)

	resp := postJSON(t, server.URL+"/users/register",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","password":"other"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "conflict", errObj["code"])
}

func TestCartCheckoutFlow(t *testing.T) {
	server := newTestServer(t)
	userID := registerUser(t, server)

	resp := postJSON(t, server.URL+"/cart/user/"+userID,
		`{"items":[{"product_id":10,"quantity":2}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cartBody := decode(t, resp)
	assert.NotZero(t, cartBody["cart_id"])

	// Checkout converts, it does not create, so 200 rather than 201.
	resp = postJSON(t, server.URL+"/cart/user/"+userID+"/checkout", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	orderBody := decode(t, resp)
	assert.Equal(t, "pending", orderBody["status"])
	assert.Equal(t, float64(2), orderBody["total_items"])

	// Cart emptied but the row survives.
	getResp, err := http.Get(server.URL + "/cart/user/" + userID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	after := decode(t, getResp)
	assert.Empty(t, after["items"])
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	server := newTestServer(t)
	userID := registerUser(t, server)

	resp := postJSON(t, server.URL+"/cart/user/"+userID+"/checkout", ``)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "empty_cart", errObj["code"])
}

func TestMalformedUserIDRejected(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/users/not-a-uuid")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "invalid_id_format", errObj["code"])
}

func TestUnknownSortKeyRejected(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/products?sort=weight")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "ok", body["status"])
}
