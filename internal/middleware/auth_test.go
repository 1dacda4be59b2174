package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizhub/internal/models"
)

const testSecret = "test-secret"

func authedRequest(token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/scores", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestJWTAuth(t *testing.T) {
	user := &models.User{ID: 7, Email: "user@example.com", Role: models.RoleCustomer}

	t.Run("valid token populates the context", func(t *testing.T) {
		token, err := IssueToken(testSecret, time.Hour, user)
		require.NoError(t, err)

		c, rec := authedRequest(token)
		require.NoError(t, JWTAuth(testSecret)(okHandler)(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint(7), UserID(c))
		assert.Equal(t, models.RoleCustomer, Role(c))
		assert.Equal(t, "user@example.com", c.Get(CtxUserEmail))
	})

	t.Run("missing header", func(t *testing.T) {
		c, rec := authedRequest("")
		require.NoError(t, JWTAuth(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := IssueToken("other-secret", time.Hour, user)
		require.NoError(t, err)

		c, rec := authedRequest(token)
		require.NoError(t, JWTAuth(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := IssueToken(testSecret, -time.Minute, user)
		require.NoError(t, err)

		c, rec := authedRequest(token)
		require.NoError(t, JWTAuth(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		c, rec := authedRequest("not.a.jwt")
		require.NoError(t, JWTAuth(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("admin passes", func(t *testing.T) {
		c, rec := authedRequest("")
		c.Set(CtxUserRole, models.RoleAdmin)
		require.NoError(t, RequireAdmin()(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("customer is rejected", func(t *testing.T) {
		c, rec := authedRequest("")
		c.Set(CtxUserRole, models.RoleCustomer)
		require.NoError(t, RequireAdmin()(okHandler)(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing role is rejected", func(t *testing.T) {
		c, rec := authedRequest("")
		require.NoError(t, RequireAdmin()(okHandler)(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
