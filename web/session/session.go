// Package session manages the session_token cookie, the credential
// carrier between browser and panel. The cookie only carries the opaque
// token; the session ledger in the database is the source of truth.
package session

import (
	"net/http"
	"time"

	"github.com/evergreenbank/panel/config"
	"github.com/evergreenbank/panel/web/service"

	"github.com/gin-gonic/gin"
)

const (
	cookieName   = "session_token"
	principalKey = "PRINCIPAL"
)

// GetToken returns the carried session token, or "" when absent.
func GetToken(c *gin.Context) string {
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

// SetToken re-issues the carrier with a lifetime matching the session's
// expiry, so the client-held token's declared lifetime tracks the
// server's. httpOnly and SameSite=Strict keep it away from scripts and
// cross-site requests; Secure is set in production.
func SetToken(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(cookieName, token, maxAge, "/", "", config.IsProduction(), true)
}

// ClearToken removes the carrier so a dead token is not retried
// indefinitely.
func ClearToken(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(cookieName, "", -1, "/", "", config.IsProduction(), true)
}

// SetPrincipal attaches the validated principal to the request context
// for downstream handlers.
func SetPrincipal(c *gin.Context, principal *service.Principal) {
	c.Set(principalKey, principal)
}

// GetPrincipal returns the principal attached by the auth middleware,
// or nil when the request is unauthenticated.
func GetPrincipal(c *gin.Context) *service.Principal {
	if obj, exists := c.Get(principalKey); exists {
		if principal, ok := obj.(*service.Principal); ok {
			return principal
		}
	}
	return nil
}
