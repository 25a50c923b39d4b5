package main

import (
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"khata/models"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		logger.Fatal().Msg("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres database")
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if !shouldMigrate {
		return
	}

	// Migrate models individually so a failure on one doesn't block others.
	// Users first so invitations and funds can reference them safely.
	if err := db.AutoMigrate(&models.User{}); err != nil {
		logger.Warn().Err(err).Msg("migration warning (users)")
	}
	if err := db.AutoMigrate(&models.Account{}); err != nil {
		logger.Warn().Err(err).Msg("migration warning (accounts)")
	}
	if err := db.AutoMigrate(&models.Ledger{}); err != nil {
		logger.Warn().Err(err).Msg("migration warning (ledgers)")
	}
	if err := db.AutoMigrate(&models.Transaction{}); err != nil {
		logger.Warn().Err(err).Msg("migration warning (transactions)")
	}
	if err := db.AutoMigrate(&models.Inventory{}); err != nil {
		logger.Warn().Err(err).Msg("migration warning (inventory)")
	}
	if err := db.AutoMigrate(&models.FinancialSettings{}); err != nil {
		logger.Warn().Err(err).Msg("migration warning (financial_settings)")
	}
	if err := db.AutoMigrate(&models.Invitation{}); err != nil {
		logger.Warn().Err(err).Msg("migration warning (invitations)")
	}
	if err := db.AutoMigrate(&models.Fund{}); err != nil {
		logger.Warn().Err(err).Msg("migration warning (funds)")
	}
}
