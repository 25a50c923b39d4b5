package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtAuthMiddleware gates the API on a valid HMAC bearer token. Identity
// lives in an external auth service; the token only proves the caller holds
// a session there. The raw token is stashed so downstream calls can relay it.
func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		if sub, _ := claims["sub"].(string); sub != "" {
			c.Set("subject", sub)
		}
		c.Set("token", tokenString)
		c.Next()
	}
}

// remoteVerifier checks user existence against the external auth service.
// Implements books.UserVerifier.
type remoteVerifier struct {
	baseURL string
	client  *http.Client
}

func newRemoteVerifier() *remoteVerifier {
	return &remoteVerifier{
		baseURL: strings.TrimRight(os.Getenv("AUTH_API_URL"), "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *remoteVerifier) VerifyUser(ctx context.Context, clientID, userID uuid.UUID, token string) bool {
	if v.baseURL == "" {
		logger.Warn().Msg("AUTH_API_URL not set, refusing user verification")
		return false
	}
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	url := fmt.Sprintf("%s/%s/user/%s", v.baseURL, clientID, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := v.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("url", url).Msg("remote user verification failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
