package books

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"khata/models"
)

// allowAll is a UserVerifier stub for tests.
type allowAll struct{}

func (allowAll) VerifyUser(ctx context.Context, clientID, userID uuid.UUID, token string) bool {
	return true
}

type denyAll struct{}

func (denyAll) VerifyUser(ctx context.Context, clientID, userID uuid.UUID, token string) bool {
	return false
}

func TestGetOrCreateCashAccount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clientID, userID := uuid.New(), uuid.New()
	svc := NewAccountService(db, allowAll{})

	account, created, err := svc.GetOrCreateCashAccount(ctx, clientID, userID, dec(t, "500"))
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, models.AccountTypeCash, account.AccountType)
	requireDecEqual(t, "500", account.Balance)

	// Second call returns the same row, ignoring the new initial balance.
	again, created, err := svc.GetOrCreateCashAccount(ctx, clientID, userID, dec(t, "9999"))
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, account.ID, again.ID)
	requireDecEqual(t, "500", again.Balance)

	// A different user gets their own cash account.
	other, created, err := svc.GetOrCreateCashAccount(ctx, clientID, uuid.New(), dec(t, "0"))
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, account.ID, other.ID)
}

func TestCreateCashAccountConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clientID, userID := uuid.New(), uuid.New()
	svc := NewAccountService(db, allowAll{})

	_, err := svc.Create(ctx, CreateAccount{
		ClientID: clientID, UserID: userID,
		AccountName: "Cash", AccountType: "cash", Balance: dec(t, "100"),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateAccount{
		ClientID: clientID, UserID: userID,
		AccountName: "Cash", AccountType: "cash",
	})
	require.ErrorIs(t, err, ErrCashAccountExists)
}

func TestCreateBankAccountDuplicateName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	clientID, userID := uuid.New(), uuid.New()
	svc := NewAccountService(db, allowAll{})

	_, err := svc.Create(ctx, CreateAccount{
		ClientID: clientID, UserID: userID,
		AccountName: "Salary Account", BankName: "SBI", AccountType: "bank",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateAccount{
		ClientID: clientID, UserID: userID,
		AccountName: "Salary Account", BankName: "SBI", AccountType: "bank",
	})
	require.ErrorIs(t, err, ErrDuplicateAccount)

	// Same name under a different user is fine.
	_, err = svc.Create(ctx, CreateAccount{
		ClientID: clientID, UserID: uuid.New(),
		AccountName: "Salary Account", BankName: "SBI", AccountType: "bank",
	})
	require.NoError(t, err)
}

func TestCreateAccountRejectedByVerifier(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, denyAll{})

	_, err := svc.Create(context.Background(), CreateAccount{
		ClientID: uuid.New(), UserID: uuid.New(),
		AccountName: "Cash", AccountType: "cash",
	})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestListByUserEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, allowAll{})
	_, err := svc.ListByUser(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrAccountNotFound)
}
