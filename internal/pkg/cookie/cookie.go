// Package cookie manages the token cookies the auth flow issues. Tokens are
// also accepted via the Authorization header, the cookies just make browser
// clients work without extra plumbing.
package cookie

import (
	"net/http"
	"strings"
	"time"

	"tandaro-api/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
)

func SetTokenCookies(c *gin.Context, cfg config.CookieConfig, accessToken, refreshToken string, accessExpiry, refreshExpiry time.Duration) {
	c.SetSameSite(parseSameSite(cfg.SameSite))
	setTokenCookie(c, cfg, AccessTokenCookieName, accessToken, int(accessExpiry.Seconds()))
	setTokenCookie(c, cfg, RefreshTokenCookieName, refreshToken, int(refreshExpiry.Seconds()))
}

// ClearTokenCookies expires both token cookies. Called on logout.
func ClearTokenCookies(c *gin.Context, cfg config.CookieConfig) {
	c.SetSameSite(parseSameSite(cfg.SameSite))
	setTokenCookie(c, cfg, AccessTokenCookieName, "", -1)
	setTokenCookie(c, cfg, RefreshTokenCookieName, "", -1)
}

func setTokenCookie(c *gin.Context, cfg config.CookieConfig, name, value string, maxAge int) {
	// HttpOnly always: tokens must not be readable from scripts
	c.SetCookie(name, value, maxAge, "/", cfg.Domain, cfg.Secure, true)
}

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}

func GetRefreshToken(c *gin.Context) string {
	token, _ := c.Cookie(RefreshTokenCookieName)
	return token
}

func parseSameSite(sameSite string) http.SameSite {
	switch strings.ToLower(sameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
