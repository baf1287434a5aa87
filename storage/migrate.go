package storage

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tictactoe-arena/models"
)

// OpenPostgres connects with the default gorm logger at warn level.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.StorageObject{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Println("✅ Database migrated")
	return nil
}
