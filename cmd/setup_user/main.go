package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"khata/pkg/books"
)

// Ops helper: registers a user and opens their cash account directly against
// the database, bypassing the API and its external identity check.
func main() {
	if len(os.Args) < 6 {
		fmt.Println("usage: go run ./cmd/setup_user <client_id> <user_id> <name> <email> <mobile> [opening_balance]")
		os.Exit(2)
	}
	clientID, err := uuid.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid client_id: %v\n", err)
		os.Exit(2)
	}
	userID, err := uuid.Parse(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid user_id: %v\n", err)
		os.Exit(2)
	}
	name := os.Args[3]
	email := os.Args[4]
	mobile := os.Args[5]
	opening := decimal.Zero
	if len(os.Args) > 6 {
		if opening, err = decimal.NewFromString(os.Args[6]); err != nil {
			fmt.Fprintf(os.Stderr, "invalid opening balance: %v\n", err)
			os.Exit(2)
		}
	}

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set in environment")
		os.Exit(1)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open db: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	users := books.NewUserService(db)
	user, err := users.Setup(ctx, books.UserSetup{
		UserID:       userID,
		ClientID:     clientID,
		Name:         name,
		Email:        email,
		MobileNumber: mobile,
		AccountType:  "person",
	})
	switch {
	case errors.Is(err, books.ErrDuplicateUser):
		fmt.Printf("user %s already exists\n", userID)
	case err != nil:
		fmt.Fprintf(os.Stderr, "failed to set up user: %v\n", err)
		os.Exit(1)
	default:
		fmt.Printf("created user %s (%s)\n", user.UserID, user.Email)
	}

	// nil verifier: this tool runs with direct DB access, identity is assumed.
	accounts := books.NewAccountService(db, nil)
	account, created, err := accounts.GetOrCreateCashAccount(ctx, clientID, userID, opening)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to ensure cash account: %v\n", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("created cash account %s with balance %s\n", account.ID, account.Balance)
	} else {
		fmt.Printf("cash account %s already exists (balance %s)\n", account.ID, account.Balance)
	}
}
