package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agrofount/backoffice/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authContext(t *testing.T, header string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/order", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAuthMiddlewarePassesValidToken(t *testing.T) {
	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := jwtutil.GenerateToken("ops@agrofount.com", 7, "superadmin")
	require.NoError(t, err)

	var gotID uint
	next := func(c echo.Context) error {
		id, ok := AdminIDFromContext(c)
		require.True(t, ok)
		gotID = id
		assert.Equal(t, "ops@agrofount.com", c.Get("email"))
		assert.Equal(t, "superadmin", c.Get("role"))
		return c.NoContent(http.StatusOK)
	}

	c, rec := authContext(t, "Bearer "+token)
	require.NoError(t, AuthMiddleware(next)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(7), gotID)
}

func TestAuthMiddlewareExpiredTokenForcesLogout(t *testing.T) {
	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := jwtutil.GenerateTokenWithExpiry("ops@agrofount.com", 7, "", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	c, rec := authContext(t, "Bearer "+token)
	require.NoError(t, AuthMiddleware(okHandler)(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session_expired", body["code"])
	assert.Equal(t, "Session expired. Please log in again.", body["message"])
}

func TestAuthMiddlewareMalformedTokenForcesLogout(t *testing.T) {
	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	c, rec := authContext(t, "Bearer not-a-token")
	require.NoError(t, AuthMiddleware(okHandler)(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session_expired", body["code"])
}

func TestAuthMiddlewareMissingOrBadHeader(t *testing.T) {
	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	c, rec := authContext(t, "")
	require.NoError(t, AuthMiddleware(okHandler)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = authContext(t, "Token abc")
	require.NoError(t, AuthMiddleware(okHandler)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareWrongKeyRejected(t *testing.T) {
	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})
	token, err := jwtutil.GenerateToken("ops@agrofount.com", 7, "")
	require.NoError(t, err)

	jwtutil.Initialize(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	c, rec := authContext(t, "Bearer "+token)
	require.NoError(t, AuthMiddleware(okHandler)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
