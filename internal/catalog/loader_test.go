package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timele/timele-backend/pkg/db"
	"github.com/timele/timele-backend/pkg/db/models"
	"github.com/timele/timele-backend/pkg/logger"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func seedCSVDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeCSV(t, dir, "aisles.csv", "aisle_id,aisle\n1,fresh fruits\n2,yogurt\n")
	writeCSV(t, dir, "departments.csv", "department_id,department\n4,produce\n16,dairy eggs\n")
	writeCSV(t, dir, "products.csv",
		"product_id,product_name,aisle_id,department_id\n10,Organic Banana,1,4\n11,Greek Yogurt,2,16\n")
	writeCSV(t, dir, "enriched_products_dept4.csv",
		"product_id,description,price,image_url\n10,Single organic banana,2.49,https://img.example/banana.png\n")
	return dir
}

func newLoader(t *testing.T, dir string) (*Loader, *db.Client) {
	t.Helper()
	client := db.NewWithConn(newTestDB(t))
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	loader, err := NewLoader(client, logg, dir)
	require.NoError(t, err)
	return loader, client
}

func TestLoaderBootstrapsAllTables(t *testing.T) {
	loader, client := newLoader(t, seedCSVDir(t))

	require.NoError(t, loader.Run(context.Background()))

	var counts [4]int64
	require.NoError(t, client.DB().Model(&models.Aisle{}).Count(&counts[0]).Error)
	require.NoError(t, client.DB().Model(&models.Department{}).Count(&counts[1]).Error)
	require.NoError(t, client.DB().Model(&models.Product{}).Count(&counts[2]).Error)
	require.NoError(t, client.DB().Model(&models.ProductEnriched{}).Count(&counts[3]).Error)

	assert.Equal(t, int64(2), counts[0])
	assert.Equal(t, int64(2), counts[1])
	assert.Equal(t, int64(2), counts[2])
	assert.Equal(t, int64(1), counts[3])

	var banana models.Product
	require.NoError(t, client.DB().First(&banana, "id = ?", 10).Error)
	assert.Equal(t, "Organic Banana", banana.Name)
	assert.Equal(t, 1, banana.AisleID)

	var enriched models.ProductEnriched
	require.NoError(t, client.DB().First(&enriched, "product_id = ?", 10).Error)
	require.NotNil(t, enriched.Price)
	assert.Equal(t, "2.49", enriched.Price.StringFixed(2))
}

func TestLoaderSecondRunIsNoOp(t *testing.T) {
	loader, client := newLoader(t, seedCSVDir(t))

	require.NoError(t, loader.Run(context.Background()))
	require.NoError(t, loader.Run(context.Background()))

	var count int64
	require.NoError(t, client.DB().Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestLoaderSkipsPopulatedTable(t *testing.T) {
	dir := seedCSVDir(t)
	loader, client := newLoader(t, dir)

	require.NoError(t, client.DB().Create(&models.Product{ID: 99, Name: "Preexisting", AisleID: 1, DepartmentID: 4}).Error)
	require.NoError(t, loader.Run(context.Background()))

	var count int64
	require.NoError(t, client.DB().Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Empty tables still load.
	require.NoError(t, client.DB().Model(&models.Aisle{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestLoaderMissingEnrichedFilesIsFine(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "aisles.csv", "aisle_id,aisle\n1,fresh fruits\n")
	writeCSV(t, dir, "departments.csv", "department_id,department\n4,produce\n")
	writeCSV(t, dir, "products.csv", "product_id,product_name,aisle_id,department_id\n10,Organic Banana,1,4\n")

	loader, client := newLoader(t, dir)
	require.NoError(t, loader.Run(context.Background()))

	var count int64
	require.NoError(t, client.DB().Model(&models.ProductEnriched{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestLoaderRejectsNegativePrice(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "aisles.csv", "aisle_id,aisle\n1,fresh fruits\n")
	writeCSV(t, dir, "departments.csv", "department_id,department\n4,produce\n")
	writeCSV(t, dir, "products.csv", "product_id,product_name,aisle_id,department_id\n10,Organic Banana,1,4\n")
	writeCSV(t, dir, "enriched_products_dept4.csv", "product_id,description,price,image_url\n10,Bad,-1.00,\n")

	loader, _ := newLoader(t, dir)
	require.Error(t, loader.Run(context.Background()))
}
