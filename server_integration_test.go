package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("integration-test-secret")

	// Stand-in for the external auth service: every user exists.
	authStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(authStub.Close)
	_ = os.Setenv("AUTH_API_URL", authStub.URL)

	initDB()
	initServices()
	r := gin.Default()
	setupRoutes(r)
	return r
}

func testToken(t *testing.T) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "integration-test",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return s
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)
	token := testToken(t)

	clientID := uuid.New()
	userID := uuid.New()

	// 1. Set up the user
	setupBody, _ := json.Marshal(map[string]any{
		"user_id":       userID,
		"client_id":     clientID,
		"name":          "Integration User",
		"email":         fmt.Sprintf("%s@example.com", userID),
		"mobile_number": fmt.Sprintf("9%09d", time.Now().UnixNano()%1e9),
		"account_type":  "company",
	})
	resp := performRequest(r, http.MethodPost, "/api/v1/users/setup", bytes.NewBuffer(setupBody), token)
	if resp.Code != http.StatusCreated {
		t.Fatalf("user setup failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Create a cash account with an opening balance
	accBody, _ := json.Marshal(map[string]any{
		"client_id":    clientID,
		"user_id":      userID,
		"account_name": "Cash",
		"account_type": "cash",
		"balance":      "5000",
	})
	resp = performRequest(r, http.MethodPost, "/api/v1/accounts", bytes.NewBuffer(accBody), token)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create account failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var accResp struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &accResp)
	if accResp.Data.ID == uuid.Nil {
		t.Fatalf("empty account id in response: %s", resp.Body.String())
	}

	// 3. Enable GST at 18%
	setBody, _ := json.Marshal(map[string]any{
		"client_id":            clientID,
		"user_id":              userID,
		"financial_year_start": "2025-04-01",
		"gst_enabled":          true,
		"gst_rate":             "18",
	})
	resp = performRequest(r, http.MethodPost, "/api/v1/settings", bytes.NewBuffer(setBody), token)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create settings failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 4. Post a GST-inclusive expense
	txBody, _ := json.Marshal(map[string]any{
		"client_id":       clientID,
		"user_id":         userID,
		"bank_account_id": accResp.Data.ID,
		"type":            "expense",
		"amount":          "1180",
		"description":     "office chairs",
		"include_gst":     true,
	})
	resp = performRequest(r, http.MethodPost, "/api/v1/transactions", bytes.NewBuffer(txBody), token)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create transaction failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var txResp struct {
		Data struct {
			ID         uuid.UUID `json:"id"`
			BaseAmount string    `json:"base_amount"`
			GSTAmount  string    `json:"gst_amount"`
		} `json:"data"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &txResp)
	if txResp.Data.BaseAmount != "1000" || txResp.Data.GSTAmount != "180" {
		t.Fatalf("unexpected GST split base=%s gst=%s", txResp.Data.BaseAmount, txResp.Data.GSTAmount)
	}

	// 5. Account balance dropped by the full amount
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/accounts?client_id=%s&user_id=%s", clientID, userID), nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("list accounts failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var listResp struct {
		Data []struct {
			Balance string `json:"balance"`
		} `json:"data"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &listResp)
	if len(listResp.Data) != 1 || listResp.Data[0].Balance != "3820" {
		t.Fatalf("unexpected accounts after expense: %s", resp.Body.String())
	}

	// 6. Today's filter sees the transaction
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/transactions/filter?filter=today&client_id=%s&user_id=%s", clientID, userID), nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("filter transactions failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 7. Delete restores the balance
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/transactions/%s?client_id=%s&user_id=%s", txResp.Data.ID, clientID, userID), nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete transaction failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/accounts?client_id=%s&user_id=%s", clientID, userID), nil, token)
	_ = json.Unmarshal(resp.Body.Bytes(), &listResp)
	if len(listResp.Data) != 1 || listResp.Data[0].Balance != "5000" {
		t.Fatalf("balance not restored after delete: %s", resp.Body.String())
	}

	// 8. Unauthorized access to a protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/api/v1/accounts", nil, "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list accounts got %d", unauth.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
