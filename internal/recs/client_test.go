package recs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func TestPredictMapsAndClampsScores(t *testing.T) {
	userID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, userID.String(), r.URL.Query().Get("user_id"))
		assert.Equal(t, "3", r.URL.Query().Get("k"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"user_id": "` + userID.String() + `",
			"predictions": [
				{"product_id": 10, "score": 0.91},
				{"product_id": 0, "score": 0.5},
				{"product_id": 11, "score": 1.5},
				{"product_id": 12, "score": -0.2},
				{"product_id": 13, "score": 0.4}
			]
		}`))
	}))
	defer server.Close()

	client, err := New(server.URL, time.Second, time.Minute, nil, nil)
	require.NoError(t, err)

	result := client.Predict(context.Background(), userID, 3)
	require.Len(t, result.Predictions, 3)
	assert.Equal(t, userID, result.UserID)
	assert.Equal(t, 3, result.Total)
	assert.Empty(t, result.Message)

	assert.Equal(t, 10, result.Predictions[0].ProductID)
	assert.InDelta(t, 0.91, result.Predictions[0].Score, 1e-9)
	assert.Equal(t, 11, result.Predictions[1].ProductID)
	assert.Equal(t, 1.0, result.Predictions[1].Score)
	assert.Equal(t, 12, result.Predictions[2].ProductID)
	assert.Equal(t, 0.0, result.Predictions[2].Score)
}

func TestPredictDegradesOnOutage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(server.URL, time.Second, time.Minute, nil, nil)
	require.NoError(t, err)

	result := client.Predict(context.Background(), uuid.New(), 5)
	assert.Empty(t, result.Predictions)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, unavailableMessage, result.Message)
}

func TestPredictDegradesOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := New(server.URL, time.Second, time.Minute, nil, nil)
	require.NoError(t, err)

	result := client.Predict(context.Background(), uuid.New(), 5)
	assert.Empty(t, result.Predictions)
	assert.Equal(t, unavailableMessage, result.Message)
}

func TestPredictServesFromCache(t *testing.T) {
	userID := uuid.New()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"user_id": "` + userID.String() + `", "predictions": [{"product_id": 42, "score": 0.8}]}`))
	}))
	defer server.Close()

	client, err := New(server.URL, time.Second, time.Minute, newFakeCache(), nil)
	require.NoError(t, err)

	first := client.Predict(context.Background(), userID, 5)
	require.Len(t, first.Predictions, 1)

	second := client.Predict(context.Background(), userID, 5)
	require.Len(t, second.Predictions, 1)
	assert.Equal(t, 42, second.Predictions[0].ProductID)
	assert.Equal(t, 1, calls)
}

func TestPredictCacheKeyIncludesLimit(t *testing.T) {
	userID := uuid.New()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"user_id": "` + userID.String() + `", "predictions": []}`))
	}))
	defer server.Close()

	client, err := New(server.URL, time.Second, time.Minute, newFakeCache(), nil)
	require.NoError(t, err)

	client.Predict(context.Background(), userID, 5)
	client.Predict(context.Background(), userID, 10)
	assert.Equal(t, 2, calls)
}
