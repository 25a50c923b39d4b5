package books

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"khata/models"
)

// newTestDB opens a throwaway sqlite database with the full schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Ledger{},
		&models.Transaction{},
		&models.Inventory{},
		&models.FinancialSettings{},
		&models.Invitation{},
		&models.Fund{},
	))
	return db
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// seedAccount creates a bank account with the given balance.
func seedAccount(t *testing.T, db *gorm.DB, clientID, userID uuid.UUID, balance string) *models.Account {
	t.Helper()
	account := models.Account{
		ClientID:    clientID,
		UserID:      userID,
		AccountName: "Test Bank",
		BankName:    "HDFC",
		AccountType: models.AccountTypeBank,
		Balance:     dec(t, balance),
		Active:      true,
	}
	require.NoError(t, db.Create(&account).Error)
	return &account
}

// enableGST stores settings with GST on at the given percentage rate.
func enableGST(t *testing.T, db *gorm.DB, clientID, userID uuid.UUID, rate string) {
	t.Helper()
	svc := NewSettingsService(db)
	_, err := svc.Create(context.Background(), SettingsCreate{
		ClientID:           clientID,
		UserID:             userID,
		FinancialYearStart: mustDate(t, "2025-04-01"),
		GSTEnabled:         true,
		GSTRate:            dec(t, rate),
	})
	require.NoError(t, err)
}

func accountBalance(t *testing.T, db *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()
	var account models.Account
	require.NoError(t, db.First(&account, "id = ?", id).Error)
	return account.Balance
}

func ledgerBalance(t *testing.T, db *gorm.DB, clientID, userID uuid.UUID, name string) decimal.Decimal {
	t.Helper()
	var ledger models.Ledger
	err := db.Where("client_id = ? AND user_id = ? AND lower(name) = lower(?)", clientID, userID, name).First(&ledger).Error
	require.NoError(t, err)
	return ledger.Balance
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func requireDecEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(dec(t, want)), "want %s got %s", want, got)
}
