package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/stepflow-api/internal/utils"
)

// Paginate limits a query to the page window in params
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// InPosition orders rows by their dense position. Ties, which only exist
// transiently while a reflow is running, fall back to creation time.
// With a parent column the rows are grouped by parent first.
func InPosition(parent string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if parent != "" {
			db = db.Order(parent + " ASC")
		}
		return db.Order("sort_order ASC").Order("created_at ASC")
	}
}
