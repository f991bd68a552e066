package models

import "gorm.io/gorm"

// AllModels returns all models for migration.
// Users must be migrated before the resources that reference them.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Bookmark{},
		&Category{},
		&Tag{},
		&PostCategory{},
		&PostTag{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
