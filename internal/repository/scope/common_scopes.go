package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// OrderByCreatedAsc breaks timestamp ties by id so listings are stable.
func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

func OrderByPositionAsc(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
