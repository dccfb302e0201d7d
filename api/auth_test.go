package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	auth := NewAuth("test-secret")

	token, err := auth.GenerateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := auth.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestParseToken_Invalid(t *testing.T) {
	auth := NewAuth("test-secret")

	_, err := auth.parseToken("not-a-token")
	assert.Error(t, err)

	// A token signed with another key must be rejected.
	other := NewAuth("other-secret")
	token, err := other.GenerateToken(7)
	require.NoError(t, err)
	_, err = auth.parseToken(token)
	assert.Error(t, err)
}

func TestNewAuth_EmptySecretFallsBack(t *testing.T) {
	auth := NewAuth("")
	token, err := auth.GenerateToken(1)
	require.NoError(t, err)

	_, err = auth.parseToken(token)
	assert.NoError(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := NewAuth("test-secret")

	r := gin.New()
	r.GET("/protected", auth.Middleware(), func(c *gin.Context) {
		userID := c.GetInt64("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	// No token.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token.
	token, err := auth.GenerateToken(42)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}
