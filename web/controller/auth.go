package controller

import (
	"errors"
	"net/http"

	"github.com/evergreenbank/panel/logger"
	"github.com/evergreenbank/panel/web/entity"
	"github.com/evergreenbank/panel/web/service"
	"github.com/evergreenbank/panel/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request body.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// AuthController handles login, session checks, and logout.
type AuthController struct {
	userService    *service.UserService
	sessionService *service.SessionService
	settingService *service.SettingService
}

func NewAuthController(g *gin.RouterGroup, userService *service.UserService, sessionService *service.SessionService, settingService *service.SettingService) *AuthController {
	a := &AuthController{
		userService:    userService,
		sessionService: sessionService,
		settingService: settingService,
	}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/auth")
	g.POST("/login", a.login)
	g.GET("/session", a.checkSession)
	g.POST("/logout", a.logout)
}

// login authenticates the credentials and issues a new session. Unknown
// user and wrong password answer identically.
func (a *AuthController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, http.StatusBadRequest, "Invalid request")
		return
	}
	if form.Username == "" || form.Password == "" {
		jsonMsg(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := a.userService.CheckUser(form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		logger.Warningf("failed login for %q from %s", form.Username, getRemoteIp(c))
		jsonMsg(c, http.StatusUnauthorized, "Invalid credentials")
		return
	} else if err != nil {
		serverError(c, "login", err)
		return
	}

	token, expiresAt, err := a.sessionService.Issue(user.Id)
	if err != nil {
		serverError(c, "issue session", err)
		return
	}

	a.userService.UpdateLastLogin(user.Id)
	session.SetToken(c, token, expiresAt)

	logger.Infof("%s logged in from %s", user.Username, getRemoteIp(c))
	c.JSON(http.StatusOK, entity.SessionInfo{
		Message:        "Login successful",
		User:           entity.NewUserInfo(user),
		BankName:       a.settingService.GetBankName(),
		SessionTimeout: a.settingService.GetSessionTimeout(),
	})
}

// checkSession validates the carried token and slides its expiry.
func (a *AuthController) checkSession(c *gin.Context) {
	token := session.GetToken(c)
	if token == "" {
		jsonMsg(c, http.StatusUnauthorized, "No session found")
		return
	}

	principal, expiresAt, err := a.sessionService.Validate(token)
	if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired) {
		session.ClearToken(c)
		jsonMsg(c, http.StatusUnauthorized, "Session expired")
		return
	} else if err != nil {
		serverError(c, "session check", err)
		return
	}

	user, err := a.userService.GetUser(principal.UserId)
	if err != nil {
		serverError(c, "session check", err)
		return
	}

	session.SetToken(c, token, expiresAt)
	c.JSON(http.StatusOK, entity.SessionInfo{
		Message:        "Session valid",
		User:           entity.NewUserInfo(user),
		BankName:       a.settingService.GetBankName(),
		SessionTimeout: a.settingService.GetSessionTimeout(),
	})
}

// logout revokes the carried session. Best-effort: it answers 200 even
// without a token, and an unknown token revokes cleanly.
func (a *AuthController) logout(c *gin.Context) {
	token := session.GetToken(c)
	if token == "" {
		jsonMsg(c, http.StatusOK, "Already logged out")
		return
	}

	if err := a.sessionService.Revoke(token); err != nil {
		logger.Warning("revoke session:", err)
	}
	session.ClearToken(c)
	jsonMsg(c, http.StatusOK, "Logout successful")
}
