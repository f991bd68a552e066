package database

import (
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect initializes the database connection.
// Postgres-style DSNs open postgres; anything else is treated as a
// SQLite file path (or ":memory:").
func Connect(dsn string) error {
	var err error
	DB, err = gorm.Open(openDialector(dsn), &gorm.Config{})
	if err != nil {
		return err
	}
	return nil
}

func openDialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return DB
}
