package books

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"khata/models"
)

func TestFindOrCreateLedgerCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	clientID, userID := uuid.New(), uuid.New()

	first, err := findOrCreateLedger(db, clientID, userID, "Travel", string(TypeExpense))
	require.NoError(t, err)
	requireDecEqual(t, "0", first.Balance)

	// Different casing resolves to the same ledger; no duplicate is created.
	second, err := findOrCreateLedger(db, clientID, userID, "TRAVEL", string(TypeExpense))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Travel", second.Name)

	var count int64
	require.NoError(t, db.Model(&models.Ledger{}).Where("client_id = ?", clientID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Another user's "Travel" is a separate ledger.
	other, err := findOrCreateLedger(db, clientID, uuid.New(), "travel", string(TypeExpense))
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)
}

func TestGSTLedgerFor(t *testing.T) {
	db := newTestDB(t)
	clientID, userID := uuid.New(), uuid.New()

	paid, err := gstLedgerFor(db, clientID, userID, TypeExpense)
	require.NoError(t, err)
	require.Equal(t, "GST Paid", paid.Name)

	collected, err := gstLedgerFor(db, clientID, userID, TypeIncome)
	require.NoError(t, err)
	require.Equal(t, "GST Collected", collected.Name)

	lent, err := gstLedgerFor(db, clientID, userID, TypeLoanReceivable)
	require.NoError(t, err)
	require.Equal(t, paid.ID, lent.ID)

	borrowed, err := gstLedgerFor(db, clientID, userID, TypeLoanPayable)
	require.NoError(t, err)
	require.Equal(t, collected.ID, borrowed.ID)
}

func TestLedgerServicePaging(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clientID, userID := uuid.New(), uuid.New()
	svc := NewLedgerService(db)

	for _, name := range []string{"Rent", "Fuel", "Salary", "Repairs", "Misc"} {
		_, err := svc.Create(ctx, LedgerCreate{
			ClientID: clientID, UserID: userID, Name: name, Type: string(TypeExpense),
		})
		require.NoError(t, err)
	}

	page, total, err := svc.PageByUser(ctx, clientID, userID, 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, page, 2)

	last, _, err := svc.PageByUser(ctx, clientID, userID, 3, 2)
	require.NoError(t, err)
	require.Len(t, last, 1)
}

func TestLedgerCreateRequiresName(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)
	_, err := svc.Create(context.Background(), LedgerCreate{ClientID: uuid.New(), UserID: uuid.New()})
	require.ErrorIs(t, err, ErrInvalidInput)
}
