package gatewayclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/timele/timele-backend/internal/catalog"
)

// ProductQuery narrows a catalog listing on the wire.
type ProductQuery struct {
	Search     string
	Categories []string
	Sort       string
	Limit      int
	Offset     int
}

func (q ProductQuery) values() url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	for _, category := range q.Categories {
		values.Add("categories", category)
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	return values
}

func (c *Client) ListProducts(ctx context.Context, query ProductQuery) (*catalog.ListResult, error) {
	var result catalog.ListResult
	if err := c.do(ctx, http.MethodGet, "/products", query.values(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SearchProducts(ctx context.Context, term string, query ProductQuery) (*catalog.ListResult, error) {
	values := query.values()
	values.Set("q", term)
	var result catalog.ListResult
	if err := c.do(ctx, http.MethodGet, "/products/search", values, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetProduct(ctx context.Context, productID int) (*catalog.ProductView, error) {
	var view catalog.ProductView
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", productID), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) ProductsByDepartment(ctx context.Context, departmentID, limit, offset int) (*catalog.ListResult, error) {
	return c.pagedProducts(ctx, fmt.Sprintf("/products/department/%d", departmentID), limit, offset)
}

func (c *Client) ProductsByAisle(ctx context.Context, aisleID, limit, offset int) (*catalog.ListResult, error) {
	return c.pagedProducts(ctx, fmt.Sprintf("/products/aisle/%d", aisleID), limit, offset)
}

func (c *Client) pagedProducts(ctx context.Context, path string, limit, offset int) (*catalog.ListResult, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	var result catalog.ListResult
	if err := c.do(ctx, http.MethodGet, path, query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
