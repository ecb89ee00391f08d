package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/dealdrop/backend/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tokens *auth.Tokens) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger())
	whoami := func(c *gin.Context) {
		c.String(http.StatusOK, strconv.FormatUint(uint64(ViewerID(c)), 10))
	}
	r.GET("/private", AuthMiddleware(tokens), whoami)
	r.GET("/public", OptionalAuth(tokens), whoami)
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	r := newRouter(tokens)
	token, err := tokens.Issue(12, "alice")
	require.NoError(t, err)

	w := get(r, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "must be logged in")

	w = get(r, "/private", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/private", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12", w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	r := newRouter(tokens)
	token, err := tokens.Issue(5, "bob")
	require.NoError(t, err)

	w := get(r, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Body.String())

	w = get(r, "/public", "expired-or-bad")
	assert.Equal(t, "0", w.Body.String())

	w = get(r, "/public", token)
	assert.Equal(t, "5", w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newRouter(auth.NewTokens("secret", time.Hour))

	w := get(r, "/public", "")
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set(RequestIDHeader, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
}
