package middleware

import (
	"net/http"
	"strings"

	"github.com/evergreenbank/panel/web/entity"
	"github.com/evergreenbank/panel/web/service"

	"github.com/gin-gonic/gin"
)

// SetupGate blocks every API request until the setup wizard has run.
// The setup endpoints themselves stay reachable, and the rejection
// carries a setupRequired flag so clients redirect to the wizard rather
// than the login page. A store error during the check falls through:
// the bootstrap path fails open.
func SetupGate(setupService *service.SetupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/setup") {
			c.Next()
			return
		}

		if !setupService.IsComplete() {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.SetupRequiredMsg{
				Message:       "System setup required",
				SetupRequired: true,
			})
			return
		}
		c.Next()
	}
}
