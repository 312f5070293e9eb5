package audit

import "gorm.io/gorm"

// Liveness selects whether reads see soft-deleted rows. Every read path
// takes it explicitly; there is no hidden global filter.
type Liveness int

const (
	LiveOnly Liveness = iota
	IncludeDeleted
)

func Scope(l Liveness) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if l == LiveOnly {
			return db.Where("is_deleted = ?", false)
		}
		return db
	}
}
