package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/pagination"
)

func newCatalogService(t *testing.T) Service {
	t.Helper()
	conn := newTestDB(t)
	seedCatalog(t, conn)

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestListProductsOrderedByID(t *testing.T) {
	svc := newCatalogService(t)

	result, err := svc.List(context.Background(), ListParams{})
	require.NoError(t, err)

	require.Len(t, result.Products, 3)
	assert.Equal(t, 10, result.Products[0].ProductID)
	assert.Equal(t, 12, result.Products[2].ProductID)
	assert.Equal(t, int64(3), result.Page.Total)
	assert.False(t, result.Page.HasNext)
}

func TestListProductsJoinsNamesAndEnrichment(t *testing.T) {
	svc := newCatalogService(t)

	result, err := svc.List(context.Background(), ListParams{})
	require.NoError(t, err)

	banana := result.Products[0]
	assert.Equal(t, "Organic Banana", banana.ProductName)
	assert.Equal(t, "fresh fruits", banana.AisleName)
	assert.Equal(t, "produce", banana.DepartmentName)
	require.NotNil(t, banana.Price)
	assert.Equal(t, "2.49", banana.Price.StringFixed(2))

	// Product without an enrichment row renders nil attributes.
	apple := result.Products[1]
	assert.Nil(t, apple.Price)
	assert.Nil(t, apple.Description)
}

func TestListProductsCategoryFilterIsCaseInsensitive(t *testing.T) {
	svc := newCatalogService(t)

	result, err := svc.List(context.Background(), ListParams{Categories: []string{"DAIRY Eggs"}})
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	assert.Equal(t, "Greek Yogurt", result.Products[0].ProductName)

	// Repeated categories union their departments.
	result, err = svc.List(context.Background(), ListParams{Categories: []string{"produce", "dairy eggs"}})
	require.NoError(t, err)
	assert.Len(t, result.Products, 3)
}

func TestListProductsSortKeys(t *testing.T) {
	svc := newCatalogService(t)

	for _, sort := range []string{"", "createdAt", "popularity", "rating"} {
		result, err := svc.List(context.Background(), ListParams{Sort: sort})
		require.NoError(t, err, "sort=%q", sort)
		assert.Equal(t, 10, result.Products[0].ProductID)
	}

	byName, err := svc.List(context.Background(), ListParams{Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, "Greek Yogurt", byName.Products[0].ProductName)

	byPrice, err := svc.List(context.Background(), ListParams{Sort: "price"})
	require.NoError(t, err)
	// The only priced product leads; unpriced ones sort last.
	assert.Equal(t, 10, byPrice.Products[0].ProductID)

	_, err = svc.List(context.Background(), ListParams{Sort: "weight"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidInput, typed.Code())
}

func TestSearchProducts(t *testing.T) {
	svc := newCatalogService(t)

	result, err := svc.Search(context.Background(), "banana", ListParams{})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, 10, result.Products[0].ProductID)

	_, err = svc.Search(context.Background(), "   ", ListParams{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidInput, typed.Code())
}

func TestGetProduct(t *testing.T) {
	svc := newCatalogService(t)

	view, err := svc.Get(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "Greek Yogurt", view.ProductName)
	assert.Equal(t, "yogurt", view.AisleName)

	_, err = svc.Get(context.Background(), 999)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	_, err = svc.Get(context.Background(), 0)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidInput, typed.Code())
}

func TestListByDepartmentAndAisle(t *testing.T) {
	svc := newCatalogService(t)

	byDept, err := svc.ListByDepartment(context.Background(), 4, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, byDept.Products, 2)

	byAisle, err := svc.ListByAisle(context.Background(), 2, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, byAisle.Products, 1)
	assert.Equal(t, "Greek Yogurt", byAisle.Products[0].ProductName)

	empty, err := svc.ListByDepartment(context.Background(), 77, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, empty.Products)
	assert.Equal(t, int64(0), empty.Page.Total)
}

func TestListProductsPagination(t *testing.T) {
	svc := newCatalogService(t)

	first, err := svc.List(context.Background(), ListParams{Page: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, first.Products, 2)
	assert.True(t, first.Page.HasNext)
	assert.False(t, first.Page.HasPrev)

	second, err := svc.List(context.Background(), ListParams{Page: pagination.Params{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	assert.Len(t, second.Products, 1)
	assert.False(t, second.Page.HasNext)
	assert.True(t, second.Page.HasPrev)
	assert.Equal(t, 2, second.Page.Page)
}

func TestEnrichmentByIDs(t *testing.T) {
	svc := newCatalogService(t)

	enrichment, err := svc.EnrichmentByIDs(context.Background(), []int{10, 11, 999})
	require.NoError(t, err)

	require.Contains(t, enrichment, 10)
	require.Contains(t, enrichment, 11)
	assert.NotContains(t, enrichment, 999)
	require.NotNil(t, enrichment[10].Price)
	assert.Nil(t, enrichment[11].Price)

	empty, err := svc.EnrichmentByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductsExist(t *testing.T) {
	svc := newCatalogService(t)

	exist, err := svc.ProductsExist(context.Background(), []int{10, 999})
	require.NoError(t, err)
	assert.True(t, exist[10])
	assert.False(t, exist[999])
}
