package models

import "github.com/shopspring/decimal"

// Aisle and Department names come straight from the bootstrap CSVs.
type Aisle struct {
	ID   int    `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;not null"`
}

func (Aisle) TableName() string { return "aisles" }

type Department struct {
	ID   int    `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;not null"`
}

func (Department) TableName() string { return "departments" }

// Product ids are preserved from the source CSV, never reassigned.
type Product struct {
	ID           int    `gorm:"column:id;primaryKey"`
	Name         string `gorm:"column:name;not null"`
	AisleID      int    `gorm:"column:aisle_id;not null"`
	DepartmentID int    `gorm:"column:department_id;not null"`
}

func (Product) TableName() string { return "products" }

// ProductEnriched is the optional side table carrying merchandising
// attributes. Absence means the product renders without price/image.
type ProductEnriched struct {
	ProductID   int              `gorm:"column:product_id;primaryKey"`
	Description *string          `gorm:"column:description"`
	Price       *decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	ImageURL    *string          `gorm:"column:image_url"`
}

func (ProductEnriched) TableName() string { return "product_enriched" }
