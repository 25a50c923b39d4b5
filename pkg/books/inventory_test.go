package books

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"khata/models"
)

func TestCreateInventoryItem(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clientID, userID := uuid.New(), uuid.New()
	account := seedAccount(t, db, clientID, userID, "5000")
	enableGST(t, db, clientID, userID, "18")

	svc := NewInventoryService(db, NewSettingsService(db), DefaultDailyLimit)
	item, rec, err := svc.CreateItem(ctx, InventoryItem{
		ClientID:   clientID,
		UserID:     userID,
		AccountID:  account.ID,
		ItemName:   "chair",
		Category:   "Furniture",
		Unit:       "pcs",
		Quantity:   dec(t, "10"),
		UnitPrice:  dec(t, "118"),
		TotalValue: dec(t, "1180"),
	})
	require.NoError(t, err)
	require.Equal(t, "chair", item.ItemName)
	require.Equal(t, "Purchase of 10 chair", rec.Description)
	require.Equal(t, string(TypeExpense), rec.Type)
	require.NotNil(t, rec.BaseAmount)
	requireDecEqual(t, "1000", *rec.BaseAmount)
	requireDecEqual(t, "180", *rec.GSTAmount)

	requireDecEqual(t, "3820", accountBalance(t, db, account.ID))
	requireDecEqual(t, "1000", ledgerBalance(t, db, clientID, userID, "Inventory"))
	requireDecEqual(t, "180", ledgerBalance(t, db, clientID, userID, "GST Paid"))
}

func TestCreateInventoryInsufficientFunds(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clientID, userID := uuid.New(), uuid.New()
	account := seedAccount(t, db, clientID, userID, "500")

	svc := NewInventoryService(db, NewSettingsService(db), DefaultDailyLimit)
	_, _, err := svc.CreateItem(ctx, InventoryItem{
		ClientID:   clientID,
		UserID:     userID,
		AccountID:  account.ID,
		ItemName:   "printer",
		Quantity:   dec(t, "1"),
		UnitPrice:  dec(t, "800"),
		TotalValue: dec(t, "800"),
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Neither the item nor the transaction persisted.
	var items int64
	require.NoError(t, db.Model(&models.Inventory{}).Count(&items).Error)
	require.Zero(t, items)
	var txs int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&txs).Error)
	require.Zero(t, txs)
	requireDecEqual(t, "500", accountBalance(t, db, account.ID))
}

func TestCreateInventoryValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewInventoryService(db, NewSettingsService(db), DefaultDailyLimit)

	_, _, err := svc.CreateItem(ctx, InventoryItem{
		ClientID: uuid.New(), UserID: uuid.New(), AccountID: uuid.New(),
		TotalValue: dec(t, "100"),
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.CreateItem(ctx, InventoryItem{
		ClientID: uuid.New(), UserID: uuid.New(), AccountID: uuid.New(),
		ItemName: "chair",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestInventoryCountsTowardDailyLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clientID, userID := uuid.New(), uuid.New()
	account := seedAccount(t, db, clientID, userID, "10000")

	svc := NewInventoryService(db, NewSettingsService(db), 1)
	_, _, err := svc.CreateItem(ctx, InventoryItem{
		ClientID: clientID, UserID: userID, AccountID: account.ID,
		ItemName: "desk", Quantity: dec(t, "1"), UnitPrice: dec(t, "2000"), TotalValue: dec(t, "2000"),
	})
	require.NoError(t, err)

	_, _, err = svc.CreateItem(ctx, InventoryItem{
		ClientID: clientID, UserID: userID, AccountID: account.ID,
		ItemName: "lamp", Quantity: dec(t, "1"), UnitPrice: dec(t, "500"), TotalValue: dec(t, "500"),
	})
	require.ErrorIs(t, err, ErrDailyLimitReached)
}
