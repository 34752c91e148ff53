package controller

import (
	"errors"
	"net/http"

	"github.com/evergreenbank/panel/web/entity"
	"github.com/evergreenbank/panel/web/service"

	"github.com/gin-gonic/gin"
)

// SetupController exposes the setup wizard endpoints. These are the only
// routes reachable while the setup gate is pending.
type SetupController struct {
	setupService *service.SetupService
}

func NewSetupController(g *gin.RouterGroup, setupService *service.SetupService) *SetupController {
	a := &SetupController{setupService: setupService}
	a.initRouter(g)
	return a
}

func (a *SetupController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/setup")
	g.GET("/status", a.status)
	g.POST("/complete", a.complete)
}

func (a *SetupController) status(c *gin.Context) {
	c.JSON(http.StatusOK, entity.SetupStatus{SetupComplete: a.setupService.IsComplete()})
}

// complete runs the one-time gate transition. A second attempt, even a
// concurrent one, answers 400 with no side effects.
func (a *SetupController) complete(c *gin.Context) {
	var req service.SetupRequest
	if err := c.ShouldBind(&req); err != nil {
		jsonMsg(c, http.StatusBadRequest, "Invalid request")
		return
	}

	adminId, err := a.setupService.Complete(&req)
	if errors.Is(err, service.ErrValidation) {
		jsonMsg(c, http.StatusBadRequest, "Admin credentials are required")
		return
	} else if errors.Is(err, service.ErrAlreadyComplete) {
		jsonMsg(c, http.StatusBadRequest, "Setup is already complete")
		return
	} else if err != nil {
		serverError(c, "complete setup", err)
		return
	}

	c.JSON(http.StatusOK, entity.SetupResult{
		Message: "Setup completed successfully",
		AdminId: adminId,
	})
}
