package recs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/timele/timele-backend/pkg/logger"
)

const unavailableMessage = "recommendations temporarily unavailable"

// Prediction is one ranked product suggestion. Scores are clamped to
// [0, 1] on ingest.
type Prediction struct {
	ProductID int     `json:"productId"`
	Score     float64 `json:"score"`
}

// Result is the edge-facing prediction payload. A recommender outage
// yields an empty list plus a message, never an error.
type Result struct {
	UserID      uuid.UUID    `json:"userId"`
	Predictions []Prediction `json:"predictions"`
	Total       int          `json:"total"`
	Message     string       `json:"message,omitempty"`
}

// wire shapes of the recommender service.
type mlPrediction struct {
	ProductID int     `json:"product_id"`
	Score     float64 `json:"score"`
}

type mlResponse struct {
	UserID      string         `json:"user_id"`
	Predictions []mlPrediction `json:"predictions"`
}

// Client calls the external recommender best-effort and memoizes
// results per user for a short TTL.
type Client struct {
	base  *url.URL
	http  *http.Client
	cache Cache
	ttl   time.Duration
	logg  *logger.Logger
}

func New(baseURL string, timeout, cacheTTL time.Duration, cache Cache, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("recommender base url required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing recommender url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Client{
		base:  parsed,
		http:  &http.Client{Timeout: timeout},
		cache: cache,
		ttl:   cacheTTL,
		logg:  logg,
	}, nil
}

// Predict never fails: any recommender or cache problem degrades to an
// empty result carrying an explanatory message.
func (c *Client) Predict(ctx context.Context, userID uuid.UUID, limit int) *Result {
	if limit <= 0 {
		limit = 10
	}

	key := cacheKey(userID, limit)
	if cached := c.fromCache(ctx, key); cached != nil {
		return cached
	}

	result, err := c.fetch(ctx, userID, limit)
	if err != nil {
		if c.logg != nil {
			c.logg.Error(ctx, "recommender.unavailable", err)
		}
		return &Result{
			UserID:      userID,
			Predictions: []Prediction{},
			Message:     unavailableMessage,
		}
	}

	c.toCache(ctx, key, result)
	return result
}

func (c *Client) fetch(ctx context.Context, userID uuid.UUID, limit int) (*Result, error) {
	target := *c.base
	target.Path = strings.TrimRight(target.Path, "/") + "/predict"
	query := url.Values{}
	query.Set("user_id", userID.String())
	query.Set("k", strconv.Itoa(limit))
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call recommender: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommender returned status %d", resp.StatusCode)
	}

	var wire mlResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode recommender response: %w", err)
	}

	predictions := make([]Prediction, 0, len(wire.Predictions))
	for _, p := range wire.Predictions {
		if p.ProductID <= 0 {
			continue
		}
		score := p.Score
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		predictions = append(predictions, Prediction{ProductID: p.ProductID, Score: score})
		if len(predictions) == limit {
			break
		}
	}

	return &Result{
		UserID:      userID,
		Predictions: predictions,
		Total:       len(predictions),
	}, nil
}

func (c *Client) fromCache(ctx context.Context, key string) *Result {
	if c.cache == nil {
		return nil
	}
	payload, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil
	}
	return &result
}

func (c *Client) toCache(ctx context.Context, key string, result *Result) {
	if c.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, payload, c.ttl); err != nil && c.logg != nil {
		c.logg.Error(ctx, "recommender.cache_write_failed", err)
	}
}

func cacheKey(userID uuid.UUID, limit int) string {
	return fmt.Sprintf("predictions:%s:%d", userID, limit)
}
