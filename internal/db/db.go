package db

import (
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"blog/internal/models"
)

// Open connects to the database named by uri and migrates the schema.
// A postgres:// or postgresql:// DSN selects the postgres driver; anything
// else is treated as a sqlite file path.
func Open(uri string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if strings.HasPrefix(uri, "postgres://") || strings.HasPrefix(uri, "postgresql://") {
		dial = postgres.Open(uri)
	} else {
		dial = sqlite.Open(uri)
	}
	gdb, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.BlogPost{},
		&models.Comment{},
		&models.ReceivedEmail{},
		&models.Session{},
	)
}
