// Package controller provides the HTTP handlers of the bank admin
// panel: authentication, the setup wizard, user management, and
// settings.
package controller

import (
	"net"
	"net/http"
	"strings"

	"github.com/evergreenbank/panel/logger"
	"github.com/evergreenbank/panel/web/entity"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real client IP from proxy headers or the
// remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return ips[0]
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// jsonMsg sends a {message} envelope with the given status.
func jsonMsg(c *gin.Context, statusCode int, msg string) {
	c.JSON(statusCode, entity.Msg{Message: msg})
}

// serverError logs the underlying failure and answers with a generic
// 500 so store details never reach the client.
func serverError(c *gin.Context, msg string, err error) {
	logger.Warning(msg+":", err)
	c.JSON(http.StatusInternalServerError, entity.Msg{Message: "Server error"})
}
