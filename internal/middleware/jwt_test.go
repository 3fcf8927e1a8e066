package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValenCardozo/volando-ando/internal/model"
	"github.com/ValenCardozo/volando-ando/internal/utils"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, authHeader string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 42, "user@example.com", model.RoleCustomer, 5)
	require.NoError(t, err)

	rec, c := runProtected(t, "Bearer "+access.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)

	uid, ok := UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), uid)

	email, ok := Email(c)
	assert.True(t, ok)
	assert.Equal(t, "user@example.com", email)
	assert.Equal(t, model.RoleCustomer, c.Get("role"))
}

func TestJWTAuthRejections(t *testing.T) {
	wrongSecret, err := utils.NewAccessToken("other-secret", 1, "a@b.c", model.RoleCustomer, 5)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken(testSecret, 1, "a@b.c", model.RoleCustomer, -5)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + wrongSecret.Token},
		{"expired", "Bearer " + expired.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := runProtected(t, tt.header, JWTAuth(testSecret))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	staffToken, err := utils.NewAccessToken(testSecret, 7, "staff@example.com", model.RoleStaff, 5)
	require.NoError(t, err)
	customerToken, err := utils.NewAccessToken(testSecret, 8, "cust@example.com", model.RoleCustomer, 5)
	require.NoError(t, err)

	rec, _ := runProtected(t, "Bearer "+staffToken.Token, JWTAuth(testSecret), RequireRole(model.RoleStaff))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = runProtected(t, "Bearer "+customerToken.Token, JWTAuth(testSecret), RequireRole(model.RoleStaff))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// No auth middleware at all: role claim missing entirely.
	rec, _ = runProtected(t, "", RequireRole(model.RoleStaff))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
