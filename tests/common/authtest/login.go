//go:build unit || e2e

package authtest

import (
	"net/http"
	"testing"

	"tandaro-api/internal/handler/dto/request"
	"tandaro-api/tests/common/dbtest"
	"tandaro-api/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fixture users created by dbtest.CreateTestUser all share this password
const fixturePassword = "password123"

// CreateAndLogin inserts a user with the given role and logs in through the
// real endpoint, returning a usable access token.
func CreateAndLogin(t *testing.T, db dbtest.DBLike, router *gin.Engine, email, role string) string {
	t.Helper()

	dbtest.CreateTestUser(t, db, email, role)
	return LoginUser(t, router, email, fixturePassword)
}

// LoginUser authenticates against /api/auth/login and returns the access
// token from the response cookie.
func LoginUser(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	w := httptest.PerformRequest(t, router, http.MethodPost, "/api/auth/login",
		request.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	accessCookie := httptest.ExtractCookie(w, "access_token")
	require.NotNil(t, accessCookie, "Access token not found in cookies")
	require.NotEmpty(t, accessCookie.Value, "Access token cookie is empty")
	return accessCookie.Value
}

func LogoutUser(t *testing.T, router *gin.Engine, cookies []*http.Cookie) {
	t.Helper()

	w := httptest.PerformRequestWithCookies(t, router, http.MethodPost, "/api/auth/logout", nil, cookies, "")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}
