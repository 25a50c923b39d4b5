package main

import (
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"khata/pkg/books"
	"khata/pkg/nlparse"
)

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

var (
	accountSvc   *books.AccountService
	ledgerSvc    *books.LedgerService
	settingsSvc  *books.SettingsService
	txSvc        *books.TransactionService
	inventorySvc *books.InventoryService
	querySvc     *books.QueryService
	reportSvc    *books.ReportService
	userSvc      *books.UserService
)

func main() {
	// Load ./.env if present before reading vars; existing env wins.
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	jwtSecret = []byte(secret)

	// Support a lightweight migrate command: `./khata migrate`
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		logger.Info().Msg("migration completed")
		return
	}

	initDB()
	initServices()

	r := gin.Default()

	setupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	if err := r.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

// initServices wires the engine services onto the shared DB handle.
func initServices() {
	limit := maxPerDay()
	settingsSvc = books.NewSettingsService(db)
	accountSvc = books.NewAccountService(db, newRemoteVerifier())
	ledgerSvc = books.NewLedgerService(db)
	txSvc = books.NewTransactionService(db, settingsSvc, limit)
	inventorySvc = books.NewInventoryService(db, settingsSvc, limit)
	querySvc = books.NewQueryService(db, nlparse.New(os.Getenv("GEMINI_MODEL")), settingsSvc, inventorySvc, limit)
	reportSvc = books.NewReportService(db)
	userSvc = books.NewUserService(db)
}

// maxPerDay reads the daily posting cap (env MAX_TRANSACTIONS_PER_DAY).
func maxPerDay() int {
	if v := os.Getenv("MAX_TRANSACTIONS_PER_DAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return books.DefaultDailyLimit
}
