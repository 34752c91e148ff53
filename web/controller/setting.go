package controller

import (
	"net/http"

	"github.com/evergreenbank/panel/database"
	"github.com/evergreenbank/panel/database/model"
	"github.com/evergreenbank/panel/web/entity"
	"github.com/evergreenbank/panel/web/middleware"
	"github.com/evergreenbank/panel/web/service"

	"github.com/gin-gonic/gin"
)

// SettingValueForm carries a single setting value.
type SettingValueForm struct {
	Value *string `json:"value"`
}

// SettingBatchForm carries a multi-key settings update.
type SettingBatchForm struct {
	Settings []entity.SettingKV `json:"settings"`
}

// SettingController exposes the branding and configuration settings.
// Reads are open (the login page needs the bank name before any session
// exists); writes are admin-only.
type SettingController struct {
	settingService *service.SettingService
}

func NewSettingController(g *gin.RouterGroup, settingService *service.SettingService, sessionService *service.SessionService) *SettingController {
	a := &SettingController{settingService: settingService}
	a.initRouter(g, sessionService)
	return a
}

func (a *SettingController) initRouter(g *gin.RouterGroup, sessionService *service.SessionService) {
	g = g.Group("/settings")
	g.GET("", a.getSettings)
	g.GET("/:key", a.getSetting)

	admin := g.Group("")
	admin.Use(middleware.SessionRequired(sessionService), middleware.RoleRequired(model.RoleAdmin))
	admin.PUT("/:key", a.updateSetting)
	admin.POST("/batch", a.updateSettings)
}

func (a *SettingController) getSettings(c *gin.Context) {
	settings, err := a.settingService.GetAllSettings()
	if err != nil {
		serverError(c, "list settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (a *SettingController) getSetting(c *gin.Context) {
	key := c.Param("key")
	setting, err := a.settingService.GetSetting(key)
	if database.IsNotFound(err) {
		jsonMsg(c, http.StatusNotFound, "Setting not found")
		return
	} else if err != nil {
		serverError(c, "get setting", err)
		return
	}
	c.JSON(http.StatusOK, entity.SettingKV{Key: setting.Key, Value: setting.Value})
}

func (a *SettingController) updateSetting(c *gin.Context) {
	key := c.Param("key")
	var form SettingValueForm
	if err := c.ShouldBind(&form); err != nil || form.Value == nil {
		jsonMsg(c, http.StatusBadRequest, "Value is required")
		return
	}

	if err := a.settingService.SetSetting(key, *form.Value); err != nil {
		serverError(c, "update setting", err)
		return
	}
	c.JSON(http.StatusOK, entity.SettingKV{Key: key, Value: *form.Value})
}

// updateSettings applies the batch atomically: either every key is
// written or none is.
func (a *SettingController) updateSettings(c *gin.Context) {
	var form SettingBatchForm
	if err := c.ShouldBind(&form); err != nil || len(form.Settings) == 0 {
		jsonMsg(c, http.StatusBadRequest, "Settings array is required")
		return
	}

	batch := make(map[string]string, len(form.Settings))
	for _, setting := range form.Settings {
		if setting.Key == "" {
			jsonMsg(c, http.StatusBadRequest, "Each setting must have key and value")
			return
		}
		batch[setting.Key] = setting.Value
	}

	if err := a.settingService.UpdateSettings(batch); err != nil {
		serverError(c, "update settings", err)
		return
	}
	c.JSON(http.StatusOK, form.Settings)
}
