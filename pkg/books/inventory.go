package books

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"khata/models"
)

// InventoryService posts stock purchases: an inventory record plus an expense
// transaction against the "Inventory" ledger, in one unit of work.
type InventoryService struct {
	db        *gorm.DB
	settings  *SettingsService
	maxPerDay int
}

func NewInventoryService(db *gorm.DB, settings *SettingsService, maxPerDay int) *InventoryService {
	return &InventoryService{db: db, settings: settings, maxPerDay: maxPerDay}
}

type InventoryItem struct {
	ClientID    uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	ItemName    string
	Description string
	Category    string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalValue  decimal.Decimal
}

// CreateItem records a purchase. The account pays the full value; the
// "Inventory" ledger takes the base part and "GST Paid" any tax part, using
// the same splitter and insufficient-funds rule as plain expenses.
func (s *InventoryService) CreateItem(ctx context.Context, item InventoryItem) (*models.Inventory, *models.Transaction, error) {
	if item.ItemName == "" {
		return nil, nil, fmt.Errorf("%w: item name required", ErrInvalidInput)
	}
	if !item.TotalValue.IsPositive() {
		return nil, nil, fmt.Errorf("%w: total value must be positive", ErrInvalidInput)
	}

	var (
		createdItem *models.Inventory
		createdTx   *models.Transaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := EnforceDailyLimit(tx, item.ClientID, item.UserID, s.maxPerDay); err != nil {
			return err
		}
		account, err := lockOwnedAccount(tx, item.AccountID, item.ClientID, item.UserID)
		if err != nil {
			return err
		}
		if account.Balance.LessThan(item.TotalValue) {
			return fmt.Errorf("%w: account %s", ErrInsufficientFunds, account.ID)
		}

		ledger, err := findOrCreateLedger(tx, item.ClientID, item.UserID, "Inventory", string(TypeExpense))
		if err != nil {
			return err
		}

		var base, gst *decimal.Decimal
		settings, err := s.settings.Active(tx, item.ClientID, item.UserID)
		if err != nil {
			return err
		}
		if settings != nil && settings.GSTEnabled && settings.GSTRate.IsPositive() {
			b, g := SplitInclusive(item.TotalValue, settings.GSTRate)
			base, gst = &b, &g
		}

		m := movementFor(TypeExpense, item.TotalValue, base, gst)
		if err := applyMovement(tx, account, ledger, m, item.ClientID, item.UserID, TypeExpense); err != nil {
			return err
		}

		inv := models.Inventory{
			ClientID:    item.ClientID,
			UserID:      item.UserID,
			ItemName:    item.ItemName,
			Description: item.Description,
			Category:    item.Category,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalValue:  item.TotalValue,
			Unit:        item.Unit,
			Active:      true,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}

		accountID := account.ID
		rec := models.Transaction{
			ClientID:    item.ClientID,
			UserID:      item.UserID,
			LedgerID:    ledger.ID,
			AccountID:   &accountID,
			Type:        string(TypeExpense),
			Amount:      item.TotalValue,
			BaseAmount:  base,
			GSTAmount:   gst,
			Description: fmt.Sprintf("Purchase of %s %s", item.Quantity.String(), item.ItemName),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		createdItem = &inv
		createdTx = &rec
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return createdItem, createdTx, nil
}
