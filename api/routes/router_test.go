package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timele/timele-backend/internal/gatewayclient"
	"github.com/timele/timele-backend/internal/recs"
	"github.com/timele/timele-backend/pkg/logger"
)

func newEdge(t *testing.T, gateway http.Handler, recommender http.Handler) *httptest.Server {
	t.Helper()

	gatewaySrv := httptest.NewServer(gateway)
	t.Cleanup(gatewaySrv.Close)
	recommenderSrv := httptest.NewServer(recommender)
	t.Cleanup(recommenderSrv.Close)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	gatewayClient, err := gatewayclient.New(gatewaySrv.URL, time.Second, logg)
	require.NoError(t, err)
	recsClient, err := recs.New(recommenderSrv.URL, time.Second, time.Minute, nil, logg)
	require.NoError(t, err)

	router, err := NewRouter(RouterParams{
		Logger:      logg,
		Gateway:     gatewayClient,
		Recommender: recsClient,
	})
	require.NoError(t, err)

	edge := httptest.NewServer(router)
	t.Cleanup(edge.Close)
	return edge
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(payload, &body), "body: %s", payload)
	return body
}

func TestRegisterTranslatesContract(t *testing.T) {
	userID := uuid.New()
	gateway := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/register", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada", body["first_name"])
		assert.Equal(t, "ada@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{
			"user_id": "` + userID.String() + `",
			"first_name": "Ada",
			"last_name": "Lovelace",
			"email_address": "ada@example.com",
			"days_between_order_notifications": 7
		}`))
	})
	edge := newEdge(t, gateway, http.NotFoundHandler())

	resp, err := http.Post(edge.URL+"/api/users/register", "application/json", strings.NewReader(
		`{"firstName":"Ada","lastName":"Lovelace","emailAddress":"ada@example.com","password":"p@ss1234"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, userID.String(), data["userId"])
	assert.Equal(t, "ada@example.com", data["emailAddress"])
	assert.Equal(t, float64(7), data["daysBetweenOrderNotifications"])
}

func TestMalformedUserIDIs422(t *testing.T) {
	edge := newEdge(t, http.NotFoundHandler(), http.NotFoundHandler())

	resp, err := http.Get(edge.URL + "/api/users/not-a-uuid")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["detail"])
}

func TestGatewayErrorMapsToDetail(t *testing.T) {
	gateway := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"code": "auth_failed", "message": "invalid credentials"}}`))
	})
	edge := newEdge(t, gateway, http.NotFoundHandler())

	resp, err := http.Post(edge.URL+"/api/users/login", "application/json", strings.NewReader(
		`{"emailAddress":"ada@example.com","password":"wrong"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "invalid credentials", body["detail"])
}

func TestGatewayOutageIs503(t *testing.T) {
	gatewaySrv := httptest.NewServer(http.NotFoundHandler())
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	gatewayClient, err := gatewayclient.New(gatewaySrv.URL, time.Second, logg)
	require.NoError(t, err)
	gatewaySrv.Close()

	recommenderSrv := httptest.NewServer(http.NotFoundHandler())
	defer recommenderSrv.Close()
	recsClient, err := recs.New(recommenderSrv.URL, time.Second, time.Minute, nil, logg)
	require.NoError(t, err)

	router, err := NewRouter(RouterParams{Logger: logg, Gateway: gatewayClient, Recommender: recsClient})
	require.NoError(t, err)
	edge := httptest.NewServer(router)
	defer edge.Close()

	resp, err := http.Get(edge.URL + "/api/users/" + uuid.NewString())
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "service temporarily unavailable", body["detail"])
}

func TestRecommenderOutageDegradesTo200(t *testing.T) {
	userID := uuid.New()
	gateway := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user_id": "` + userID.String() + `", "first_name": "Ada", "last_name": "Lovelace", "email_address": "ada@example.com"}`))
	})
	recommender := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	edge := newEdge(t, gateway, recommender)

	resp, err := http.Get(edge.URL + "/api/predictions/user/" + userID.String())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Empty(t, data["predictions"])
	assert.Equal(t, float64(0), data["total"])
	assert.NotEmpty(t, data["message"])
}

func TestPredictionsForUnknownUserIs404(t *testing.T) {
	gateway := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"code": "not_found", "message": "user not found"}}`))
	})
	edge := newEdge(t, gateway, http.NotFoundHandler())

	resp, err := http.Get(edge.URL + "/api/predictions/user/" + uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCheckoutReturnsOK(t *testing.T) {
	userID := uuid.New()
	gateway := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cart/user/"+userID.String()+"/checkout", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"order_id": 3422007,
			"user_id": "` + userID.String() + `",
			"order_number": 1,
			"status": "pending",
			"total_items": 1,
			"total_price": "4.99",
			"items": [],
			"created_at": "2025-06-01T00:00:00Z",
			"updated_at": "2025-06-01T00:00:00Z"
		}`))
	})
	edge := newEdge(t, gateway, http.NotFoundHandler())

	resp, err := http.Post(edge.URL+"/api/cart/"+userID.String()+"/checkout", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "3422007", data["orderId"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, float64(1), data["totalItems"])
}

func TestLogoutPlaceholder(t *testing.T) {
	edge := newEdge(t, http.NotFoundHandler(), http.NotFoundHandler())

	resp, err := http.Post(edge.URL+"/api/users/logout", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["loggedOut"])
}

func TestCartIDRenderedAsString(t *testing.T) {
	userID := uuid.New()
	gateway := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"cart_id": 3422001,
			"user_id": "` + userID.String() + `",
			"items": [{"product_id": 10, "product_name": "Organic Banana", "quantity": 2, "add_to_cart_order": 1, "reordered": false}],
			"updated_at": "2025-06-01T00:00:00Z"
		}`))
	})
	edge := newEdge(t, gateway, http.NotFoundHandler())

	resp, err := http.Get(edge.URL + "/api/cart/" + userID.String())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "3422001", data["cartId"])
	assert.Equal(t, float64(2), data["totalItems"])

	items := data["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, float64(10), item["productId"])
	assert.Equal(t, "Organic Banana", item["productName"])
}

func TestUnknownBodyFieldRejected(t *testing.T) {
	edge := newEdge(t, http.NotFoundHandler(), http.NotFoundHandler())

	resp, err := http.Post(edge.URL+"/api/users/login", "application/json", strings.NewReader(
		`{"emailAddress":"a@b.c","password":"x","extra":true}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
