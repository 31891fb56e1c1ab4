package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tinkertanker/bitvibe-extension/config"
	"github.com/tinkertanker/bitvibe-extension/models"
)

// Connect opens the database and migrates the schema. It fails fast if
// the DB is unreachable. The caller owns the handle and passes a Store
// built from it into the handlers; there is no package-level singleton.
func Connect(cfg *config.Config) *gorm.DB {
	// TranslateError lets the store recognise unique-index collisions
	// (gorm.ErrDuplicatedKey) when minting join codes and tokens.
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Classroom{},
		&models.Student{},
	)
}
