package postgres

import (
	"log"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.ReferralConfig) *gorm.DB {
	dsn := cfg.ReferralDB.Dsn
	// TranslateError maps unique-constraint violations to
	// gorm.ErrDuplicatedKey, which the settlement layer relies on for
	// idempotent replays.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate schema: %v\n", err.Error())
	}

	return db
}
