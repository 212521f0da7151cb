package catalog

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/timele/timele-backend/pkg/db/models"
)

var testDBCounter int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:catalog_test_%d?mode=memory&cache=shared", testDBCounter)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.Aisle{},
		&models.Department{},
		&models.Product{},
		&models.ProductEnriched{},
	))
	return conn
}

func seedCatalog(t *testing.T, conn *gorm.DB) {
	t.Helper()

	require.NoError(t, conn.Create(&[]models.Aisle{
		{ID: 1, Name: "fresh fruits"},
		{ID: 2, Name: "yogurt"},
	}).Error)
	require.NoError(t, conn.Create(&[]models.Department{
		{ID: 4, Name: "produce"},
		{ID: 16, Name: "dairy eggs"},
	}).Error)
	require.NoError(t, conn.Create(&[]models.Product{
		{ID: 10, Name: "Organic Banana", AisleID: 1, DepartmentID: 4},
		{ID: 11, Name: "Honeycrisp Apple", AisleID: 1, DepartmentID: 4},
		{ID: 12, Name: "Greek Yogurt", AisleID: 2, DepartmentID: 16},
	}).Error)

	price := decimal.RequireFromString("2.49")
	desc := "Single organic banana"
	require.NoError(t, conn.Create(&models.ProductEnriched{
		ProductID:   10,
		Description: &desc,
		Price:       &price,
	}).Error)
}
