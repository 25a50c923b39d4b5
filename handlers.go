package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"khata/pkg/books"
)

func setupRoutes(r *gin.Engine) {
	r.GET("/health", healthHandler)

	v1 := r.Group("/api/v1")
	v1.Use(jwtAuthMiddleware())

	v1.POST("/accounts", createAccountHandler)
	v1.GET("/accounts", listAccountsHandler)

	v1.POST("/transactions", createTransactionHandler)
	v1.POST("/transactions/query", queryTransactionHandler)
	v1.GET("/transactions/filter", filterTransactionsHandler)
	v1.PUT("/transactions/:id", updateTransactionHandler)
	v1.DELETE("/transactions/:id", deleteTransactionHandler)

	v1.POST("/inventory", createInventoryHandler)

	v1.POST("/ledgers", createLedgerHandler)
	v1.GET("/ledgers", listLedgersHandler)
	v1.GET("/ledgers/summary", ledgerSummaryHandler)

	v1.POST("/settings", createSettingsHandler)
	v1.GET("/settings", listSettingsHandler)

	v1.POST("/users/setup", setupUserHandler)
	v1.POST("/users/invite", inviteUserHandler)
	v1.GET("/users/invitations/status", invitationStatusHandler)
	v1.POST("/funds/transfer", transferFundsHandler)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respond writes the uniform success envelope used by every endpoint.
func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"success":     true,
		"status_code": status,
		"message":     message,
		"data":        data,
		"error":       nil,
	})
}

// respondErr maps sentinel errors from pkg/books onto HTTP statuses and
// writes the failure envelope. Anything unmapped is a 500 and gets logged.
func respondErr(c *gin.Context, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{
		"success":     false,
		"status_code": status,
		"message":     err.Error(),
		"data":        nil,
		"error":       gin.H{"detail": err.Error()},
	})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, books.ErrAccountNotFound),
		errors.Is(err, books.ErrTransactionNotFound),
		errors.Is(err, books.ErrUserNotFound),
		errors.Is(err, books.ErrInvitationNotFound):
		return http.StatusNotFound
	case errors.Is(err, books.ErrDuplicateAccount),
		errors.Is(err, books.ErrCashAccountExists),
		errors.Is(err, books.ErrDuplicateUser),
		errors.Is(err, books.ErrPendingInvitation):
		return http.StatusConflict
	case errors.Is(err, books.ErrInsufficientFunds),
		errors.Is(err, books.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, books.ErrDailyLimitReached):
		return http.StatusTooManyRequests
	case errors.Is(err, books.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func bearerToken(c *gin.Context) string {
	if v, ok := c.Get("token"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// uuidQuery parses a required uuid query parameter.
func uuidQuery(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Query(name))
	if err != nil {
		return uuid.Nil, books.ErrInvalidInput
	}
	return id, nil
}

func createAccountHandler(c *gin.Context) {
	var req struct {
		ClientID    uuid.UUID       `json:"client_id" binding:"required"`
		UserID      uuid.UUID       `json:"user_id" binding:"required"`
		AccountName string          `json:"account_name" binding:"required"`
		BankName    string          `json:"bank_name"`
		AccountType string          `json:"account_type" binding:"required"`
		Balance     decimal.Decimal `json:"balance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	account, err := accountSvc.Create(c.Request.Context(), books.CreateAccount{
		ClientID:    req.ClientID,
		UserID:      req.UserID,
		AccountName: req.AccountName,
		BankName:    req.BankName,
		AccountType: req.AccountType,
		Balance:     req.Balance,
		Token:       bearerToken(c),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Account created successfully", account)
}

func listAccountsHandler(c *gin.Context) {
	clientID, err := uuidQuery(c, "client_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	userID, err := uuidQuery(c, "user_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	accounts, err := accountSvc.ListByUser(c.Request.Context(), clientID, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Accounts fetched successfully", accounts)
}

func createTransactionHandler(c *gin.Context) {
	var req struct {
		ClientID    uuid.UUID       `json:"client_id" binding:"required"`
		UserID      uuid.UUID       `json:"user_id" binding:"required"`
		AccountID   uuid.UUID       `json:"bank_account_id" binding:"required"`
		Type        string          `json:"type" binding:"required"`
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		Description string          `json:"description"`
		IncludeGST  bool            `json:"include_gst"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	rec, err := txSvc.Create(c.Request.Context(), books.CreateTransaction{
		ClientID:    req.ClientID,
		UserID:      req.UserID,
		AccountID:   req.AccountID,
		Type:        books.TxType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		IncludeGST:  req.IncludeGST,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Transaction created successfully", rec)
}

func updateTransactionHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	clientID, err := uuidQuery(c, "client_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	userID, err := uuidQuery(c, "user_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	var req struct {
		AccountID   *uuid.UUID       `json:"bank_account_id"`
		Type        *string          `json:"type"`
		Amount      *decimal.Decimal `json:"amount"`
		Description *string          `json:"description"`
		IncludeGST  *bool            `json:"include_gst"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	changes := books.UpdateTransaction{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
		IncludeGST:  req.IncludeGST,
	}
	if req.Type != nil {
		t := books.TxType(*req.Type)
		changes.Type = &t
	}
	rec, err := txSvc.Update(c.Request.Context(), id, clientID, userID, changes)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Transaction updated successfully", rec)
}

func deleteTransactionHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	clientID, err := uuidQuery(c, "client_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	userID, err := uuidQuery(c, "user_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	if err := txSvc.Delete(c.Request.Context(), id, clientID, userID); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Transaction deleted successfully", gin.H{"transaction_id": id})
}

// queryTransactionHandler is the natural-language entry point. Without a
// bank_account_id it answers with a preview plus the caller's accounts; with
// one it posts the parsed transaction.
func queryTransactionHandler(c *gin.Context) {
	var req struct {
		ClientID  uuid.UUID  `json:"client_id" binding:"required"`
		UserID    uuid.UUID  `json:"user_id" binding:"required"`
		Query     string     `json:"query" binding:"required"`
		AccountID *uuid.UUID `json:"bank_account_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	preview, rec, err := querySvc.HandleQuery(c.Request.Context(), books.QueryRequest{
		ClientID:  req.ClientID,
		UserID:    req.UserID,
		Query:     req.Query,
		AccountID: req.AccountID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	if preview != nil {
		c.JSON(http.StatusOK, gin.H{
			"success":     false,
			"status_code": http.StatusOK,
			"message":     "Please select a bank account to complete the transaction",
			"data":        preview,
			"error":       nil,
			"meta":        gin.H{"requires": "bank_account_id"},
		})
		return
	}
	respond(c, http.StatusCreated, "Transaction created successfully", rec)
}

func filterTransactionsHandler(c *gin.Context) {
	clientID, err := uuidQuery(c, "client_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	userID, err := uuidQuery(c, "user_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	filter := books.DateFilter(c.DefaultQuery("filter", string(books.FilterToday)))
	var start, end *time.Time
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondErr(c, books.ErrInvalidInput)
			return
		}
		start = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondErr(c, books.ErrInvalidInput)
			return
		}
		end = &t
	}
	out, err := reportSvc.FilterTransactions(c.Request.Context(), filter, clientID, userID, start, end)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Transactions fetched successfully", out)
}

func createInventoryHandler(c *gin.Context) {
	var req struct {
		ClientID    uuid.UUID       `json:"client_id" binding:"required"`
		UserID      uuid.UUID       `json:"user_id" binding:"required"`
		AccountID   uuid.UUID       `json:"bank_account_id" binding:"required"`
		ItemName    string          `json:"item_name" binding:"required"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Unit        string          `json:"unit"`
		Quantity    decimal.Decimal `json:"quantity"`
		UnitPrice   decimal.Decimal `json:"unit_price"`
		TotalValue  decimal.Decimal `json:"total_value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	item, rec, err := inventorySvc.CreateItem(c.Request.Context(), books.InventoryItem{
		ClientID:    req.ClientID,
		UserID:      req.UserID,
		AccountID:   req.AccountID,
		ItemName:    req.ItemName,
		Description: req.Description,
		Category:    req.Category,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		TotalValue:  req.TotalValue,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Inventory item created successfully", gin.H{
		"item":        item,
		"transaction": rec,
	})
}

func createLedgerHandler(c *gin.Context) {
	var req struct {
		ClientID uuid.UUID       `json:"client_id" binding:"required"`
		UserID   uuid.UUID       `json:"user_id" binding:"required"`
		Name     string          `json:"name" binding:"required"`
		Type     string          `json:"type" binding:"required"`
		Balance  decimal.Decimal `json:"balance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	ledger, err := ledgerSvc.Create(c.Request.Context(), books.LedgerCreate{
		ClientID: req.ClientID,
		UserID:   req.UserID,
		Name:     req.Name,
		Type:     req.Type,
		Balance:  req.Balance,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Ledger created successfully", ledger)
}

func listLedgersHandler(c *gin.Context) {
	clientID, err := uuidQuery(c, "client_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	userID, err := uuidQuery(c, "user_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	page := intQuery(c, "page", 1)
	size := intQuery(c, "page_size", 20)
	ledgers, total, err := ledgerSvc.PageByUser(c.Request.Context(), clientID, userID, page, size)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"status_code": http.StatusOK,
		"message":     "Ledgers fetched successfully",
		"data":        ledgers,
		"error":       nil,
		"meta":        gin.H{"page": page, "page_size": size, "total": total},
	})
}

func ledgerSummaryHandler(c *gin.Context) {
	clientID, err := uuidQuery(c, "client_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	userID, err := uuidQuery(c, "user_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	period := books.Period(c.DefaultQuery("period", string(books.PeriodThisMonth)))
	summary, err := reportSvc.Summary(c.Request.Context(), period, clientID, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Ledger summary fetched successfully", summary)
}

func createSettingsHandler(c *gin.Context) {
	var req struct {
		ClientID           uuid.UUID       `json:"client_id" binding:"required"`
		UserID             uuid.UUID       `json:"user_id" binding:"required"`
		FinancialYearStart string          `json:"financial_year_start" binding:"required"`
		CurrencyCode       string          `json:"currency_code"`
		Language           string          `json:"language"`
		Timezone           string          `json:"timezone"`
		GSTEnabled         bool            `json:"gst_enabled"`
		GSTRate            decimal.Decimal `json:"gst_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	fyStart, err := time.Parse("2006-01-02", req.FinancialYearStart)
	if err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	settings, err := settingsSvc.Create(c.Request.Context(), books.SettingsCreate{
		ClientID:           req.ClientID,
		UserID:             req.UserID,
		FinancialYearStart: fyStart,
		CurrencyCode:       req.CurrencyCode,
		Language:           req.Language,
		Timezone:           req.Timezone,
		GSTEnabled:         req.GSTEnabled,
		GSTRate:            req.GSTRate,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Financial settings created successfully", settings)
}

func listSettingsHandler(c *gin.Context) {
	clientID, err := uuidQuery(c, "client_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	userID, err := uuidQuery(c, "user_id")
	if err != nil {
		respondErr(c, err)
		return
	}
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	settings, err := settingsSvc.ListByUser(c.Request.Context(), clientID, userID, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Financial settings fetched successfully", settings)
}

func setupUserHandler(c *gin.Context) {
	var req struct {
		UserID       uuid.UUID `json:"user_id" binding:"required"`
		ClientID     uuid.UUID `json:"client_id" binding:"required"`
		Name         string    `json:"name" binding:"required"`
		Email        string    `json:"email" binding:"required"`
		MobileNumber string    `json:"mobile_number" binding:"required"`
		AccountType  string    `json:"account_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	user, err := userSvc.Setup(c.Request.Context(), books.UserSetup{
		UserID:       req.UserID,
		ClientID:     req.ClientID,
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		AccountType:  req.AccountType,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "User setup completed successfully", user)
}

func inviteUserHandler(c *gin.Context) {
	var req struct {
		ClientID        uuid.UUID `json:"client_id" binding:"required"`
		InvitedByUserID uuid.UUID `json:"invited_by_user_id" binding:"required"`
		Email           string    `json:"email"`
		MobileNumber    string    `json:"mobile_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	invitation, err := userSvc.Invite(c.Request.Context(), books.UserInvite{
		ClientID:        req.ClientID,
		InvitedByUserID: req.InvitedByUserID,
		Email:           req.Email,
		MobileNumber:    req.MobileNumber,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Invitation sent successfully", invitation)
}

func invitationStatusHandler(c *gin.Context) {
	mobile := c.Query("mobile_number")
	invitationID, err := uuidQuery(c, "invitation_id")
	if err != nil || mobile == "" {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	status, err := userSvc.InvitationStatus(c.Request.Context(), mobile, invitationID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, status.Message, status)
}

func transferFundsHandler(c *gin.Context) {
	var req struct {
		CompanyID   uuid.UUID       `json:"company_id" binding:"required"`
		UserID      uuid.UUID       `json:"user_id" binding:"required"`
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		Description string          `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, books.ErrInvalidInput)
		return
	}
	fund, err := userSvc.TransferFunds(c.Request.Context(), books.FundTransfer{
		CompanyID:   req.CompanyID,
		UserID:      req.UserID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Funds transferred successfully", fund)
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
