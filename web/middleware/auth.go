// Package middleware provides the gin filters guarding every protected
// route: the setup gate, session validation, and the role check.
package middleware

import (
	"errors"
	"net/http"

	"github.com/evergreenbank/panel/database/model"
	"github.com/evergreenbank/panel/logger"
	"github.com/evergreenbank/panel/web/entity"
	"github.com/evergreenbank/panel/web/service"
	"github.com/evergreenbank/panel/web/session"

	"github.com/gin-gonic/gin"
)

// SessionRequired extracts the token from the cookie carrier and
// validates it against the ledger. A valid session has already been slid
// by the validation, so the carrier is re-issued with the new expiry; a
// dead token clears the carrier so the client stops retrying it.
func SessionRequired(sessionService *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.GetToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Message: "Authentication required"})
			return
		}

		principal, expiresAt, err := sessionService.Validate(token)
		if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired) {
			session.ClearToken(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Message: "Session expired"})
			return
		} else if err != nil {
			logger.Warning("validate session:", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, entity.Msg{Message: "Server error"})
			return
		}

		session.SetToken(c, token, expiresAt)
		session.SetPrincipal(c, principal)
		c.Next()
	}
}

// RoleRequired rejects principals whose role does not match. Must run
// after SessionRequired.
func RoleRequired(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := session.GetPrincipal(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Message: "Authentication required"})
			return
		}
		if principal.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.Msg{Message: "Admin access required"})
			return
		}
		c.Next()
	}
}
