package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/evergreenbank/panel/database/model"
	"github.com/evergreenbank/panel/web/entity"
	"github.com/evergreenbank/panel/web/middleware"
	"github.com/evergreenbank/panel/web/service"
	"github.com/evergreenbank/panel/web/session"

	"github.com/gin-gonic/gin"
)

// CreateUserForm is the admin user-creation request body.
type CreateUserForm struct {
	Username  string     `json:"username" form:"username"`
	Email     string     `json:"email" form:"email"`
	Password  string     `json:"password" form:"password"`
	FirstName string     `json:"firstName" form:"firstName"`
	LastName  string     `json:"lastName" form:"lastName"`
	Role      model.Role `json:"role" form:"role"`
}

// UpdateUserForm carries the optional fields of a user update; absent
// fields stay unchanged.
type UpdateUserForm struct {
	FirstName *string     `json:"firstName"`
	LastName  *string     `json:"lastName"`
	Email     *string     `json:"email"`
	Role      *model.Role `json:"role"`
	Password  *string     `json:"password"`
}

// UserController handles the user management endpoints. Listing,
// creation, and deletion are admin-only; reads and updates are allowed
// for the user's own record too.
type UserController struct {
	userService *service.UserService
}

func NewUserController(g *gin.RouterGroup, userService *service.UserService, sessionService *service.SessionService) *UserController {
	a := &UserController{userService: userService}
	a.initRouter(g, sessionService)
	return a
}

func (a *UserController) initRouter(g *gin.RouterGroup, sessionService *service.SessionService) {
	g = g.Group("/users")
	g.Use(middleware.SessionRequired(sessionService))

	g.GET("/:id", a.getUser)
	g.PUT("/:id", a.updateUser)

	admin := g.Group("")
	admin.Use(middleware.RoleRequired(model.RoleAdmin))
	admin.GET("", a.getUsers)
	admin.POST("", a.createUser)
	admin.DELETE("/:id", a.deleteUser)
}

func (a *UserController) getUsers(c *gin.Context) {
	users, err := a.userService.GetUsers()
	if err != nil {
		serverError(c, "list users", err)
		return
	}
	items := make([]entity.UserListItem, 0, len(users))
	for _, user := range users {
		items = append(items, entity.NewUserListItem(user))
	}
	c.JSON(http.StatusOK, items)
}

func (a *UserController) getUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	principal := session.GetPrincipal(c)
	if principal.UserId != id && principal.Role != model.RoleAdmin {
		jsonMsg(c, http.StatusForbidden, "Not authorized")
		return
	}

	user, err := a.userService.GetUser(id)
	if errors.Is(err, service.ErrUserNotFound) {
		jsonMsg(c, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		serverError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUserListItem(user))
}

func (a *UserController) createUser(c *gin.Context) {
	var form CreateUserForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := a.userService.CreateUser(form.Username, form.Email, form.Password, form.FirstName, form.LastName, form.Role)
	if errors.Is(err, service.ErrValidation) {
		jsonMsg(c, http.StatusBadRequest, "Username, email and password are required")
		return
	} else if errors.Is(err, service.ErrUserExists) {
		jsonMsg(c, http.StatusBadRequest, "Username or email already exists")
		return
	} else if err != nil {
		serverError(c, "create user", err)
		return
	}
	c.JSON(http.StatusCreated, entity.NewUserInfo(user))
}

func (a *UserController) updateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	principal := session.GetPrincipal(c)
	if principal.UserId != id && principal.Role != model.RoleAdmin {
		jsonMsg(c, http.StatusForbidden, "Not authorized")
		return
	}

	var form UpdateUserForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, http.StatusBadRequest, "Invalid request")
		return
	}

	// Only an admin may change roles.
	if form.Role != nil && principal.Role != model.RoleAdmin {
		jsonMsg(c, http.StatusForbidden, "Not authorized to change role")
		return
	}

	patch := &service.UserPatch{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Role:      form.Role,
		Password:  form.Password,
	}
	user, err := a.userService.UpdateUser(id, patch)
	if errors.Is(err, service.ErrValidation) {
		jsonMsg(c, http.StatusBadRequest, "No fields to update")
		return
	} else if errors.Is(err, service.ErrUserNotFound) {
		jsonMsg(c, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		serverError(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, entity.NewUserInfo(user))
}

func (a *UserController) deleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	err = a.userService.DeleteUser(id)
	if errors.Is(err, service.ErrUserNotFound) {
		jsonMsg(c, http.StatusNotFound, "User not found")
		return
	} else if errors.Is(err, service.ErrLastAdmin) {
		jsonMsg(c, http.StatusBadRequest, "Cannot delete the last admin user")
		return
	} else if err != nil {
		serverError(c, "delete user", err)
		return
	}
	jsonMsg(c, http.StatusOK, "User deleted successfully")
}
