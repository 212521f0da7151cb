package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/timele/timele-backend/pkg/db"
	"github.com/timele/timele-backend/pkg/db/models"
	"github.com/timele/timele-backend/pkg/logger"
)

const loaderBatchSize = 500

// Loader bootstraps the catalog tables from mounted CSV files. Each
// table loads only when empty, so restarts are no-ops.
type Loader struct {
	client *db.Client
	logg   *logger.Logger
	dir    string
}

func NewLoader(client *db.Client, logg *logger.Logger, dir string) (*Loader, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Loader{client: client, logg: logg, dir: dir}, nil
}

// Run loads aisles, departments and products from the mandatory CSVs,
// then the optional enrichment files. Aisles and departments go first
// so product foreign keys resolve.
func (l *Loader) Run(ctx context.Context) error {
	if err := l.loadAisles(ctx); err != nil {
		return fmt.Errorf("loading aisles: %w", err)
	}
	if err := l.loadDepartments(ctx); err != nil {
		return fmt.Errorf("loading departments: %w", err)
	}
	if err := l.loadProducts(ctx); err != nil {
		return fmt.Errorf("loading products: %w", err)
	}
	if err := l.loadEnriched(ctx); err != nil {
		return fmt.Errorf("loading enriched products: %w", err)
	}
	return nil
}

func (l *Loader) loadAisles(ctx context.Context) error {
	empty, err := l.tableEmpty(ctx, "aisles")
	if err != nil || !empty {
		return err
	}

	var aisles []models.Aisle
	err = l.forEachRecord(filepath.Join(l.dir, "aisles.csv"), func(record map[string]string) error {
		id, err := parseIntColumn(record, "aisle_id")
		if err != nil {
			return err
		}
		aisles = append(aisles, models.Aisle{ID: id, Name: record["aisle"]})
		return nil
	})
	if err != nil {
		return err
	}

	return l.insert(ctx, "aisles", len(aisles), &aisles)
}

func (l *Loader) loadDepartments(ctx context.Context) error {
	empty, err := l.tableEmpty(ctx, "departments")
	if err != nil || !empty {
		return err
	}

	var departments []models.Department
	err = l.forEachRecord(filepath.Join(l.dir, "departments.csv"), func(record map[string]string) error {
		id, err := parseIntColumn(record, "department_id")
		if err != nil {
			return err
		}
		departments = append(departments, models.Department{ID: id, Name: record["department"]})
		return nil
	})
	if err != nil {
		return err
	}

	return l.insert(ctx, "departments", len(departments), &departments)
}

func (l *Loader) loadProducts(ctx context.Context) error {
	empty, err := l.tableEmpty(ctx, "products")
	if err != nil || !empty {
		return err
	}

	var products []models.Product
	err = l.forEachRecord(filepath.Join(l.dir, "products.csv"), func(record map[string]string) error {
		id, err := parseIntColumn(record, "product_id")
		if err != nil {
			return err
		}
		aisleID, err := parseIntColumn(record, "aisle_id")
		if err != nil {
			return err
		}
		departmentID, err := parseIntColumn(record, "department_id")
		if err != nil {
			return err
		}
		products = append(products, models.Product{
			ID:           id,
			Name:         record["product_name"],
			AisleID:      aisleID,
			DepartmentID: departmentID,
		})
		return nil
	})
	if err != nil {
		return err
	}

	return l.insert(ctx, "products", len(products), &products)
}

// loadEnriched scans for the optional enriched_products_dept*.csv
// files. No files means the catalog simply renders without prices.
func (l *Loader) loadEnriched(ctx context.Context) error {
	empty, err := l.tableEmpty(ctx, "product_enriched")
	if err != nil || !empty {
		return err
	}

	matches, err := filepath.Glob(filepath.Join(l.dir, "enriched_products_dept*.csv"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		l.logg.Info(ctx, "no enriched product files found, skipping")
		return nil
	}

	var rows []models.ProductEnriched
	for _, path := range matches {
		err := l.forEachRecord(path, func(record map[string]string) error {
			id, err := parseIntColumn(record, "product_id")
			if err != nil {
				return err
			}
			row := models.ProductEnriched{ProductID: id}
			if v := strings.TrimSpace(record["description"]); v != "" {
				row.Description = &v
			}
			if v := strings.TrimSpace(record["price"]); v != "" {
				price, err := decimal.NewFromString(v)
				if err != nil {
					return fmt.Errorf("%s: bad price %q: %w", path, v, err)
				}
				if price.IsNegative() {
					return fmt.Errorf("%s: negative price for product %d", path, id)
				}
				row.Price = &price
			}
			if v := strings.TrimSpace(record["image_url"]); v != "" {
				row.ImageURL = &v
			}
			rows = append(rows, row)
			return nil
		})
		if err != nil {
			return err
		}
	}

	return l.insert(ctx, "product_enriched", len(rows), &rows)
}

func (l *Loader) tableEmpty(ctx context.Context, table string) (bool, error) {
	var count int64
	if err := l.client.DB().WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		l.logg.Info(l.logg.WithField(ctx, "table", table), "table already populated, skipping bootstrap")
	}
	return count == 0, nil
}

func (l *Loader) insert(ctx context.Context, table string, count int, rows any) error {
	if count == 0 {
		return nil
	}
	if err := l.client.DB().WithContext(ctx).Session(&gorm.Session{CreateBatchSize: loaderBatchSize}).Create(rows).Error; err != nil {
		return err
	}
	l.logg.Info(l.logg.WithFields(ctx, map[string]any{"table": table, "rows": count}), "catalog table loaded")
	return nil
}

// forEachRecord streams a headered CSV, handing each data row to fn as
// a column-name map. UTF-8 with header row is the required format.
func (l *Loader) forEachRecord(path string, fn func(record map[string]string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("%s: reading header: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.ToLower(header[i]))
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: line %d: %w", path, line+1, err)
		}
		line++

		record := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}

func parseIntColumn(record map[string]string, column string) (int, error) {
	raw, ok := record[column]
	if !ok {
		return 0, fmt.Errorf("missing column %q", column)
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", column, err)
	}
	return value, nil
}
