package database

import (
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ActiveMemberships filters membership queries to active rows only.
func ActiveMemberships(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// WithDeleted includes soft-deleted rows (admin/audit paths).
func WithDeleted(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
