package controller

import (
	"cedupscore/app_error"
	"cedupscore/repository"
	"cedupscore/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	userService *service.UserService
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		userService: service.NewUserService(db),
	}
}

func setupUserController(db *gorm.DB) []RouteInfo {
	e := NewUserController(db)
	basePath := "users"
	routes := []RouteInfo{
		{Method: "POST", Path: "/login", HandlerFunc: e.loginHandler()},
		{Method: "GET", Path: "/self", HandlerFunc: e.getSelfHandler(), Authenticated: true},
		{Method: "POST", Path: "", HandlerFunc: e.createUserHandler(), Authenticated: true, RoleRequired: []string{string(repository.PermissionSuperAdmin)}},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

func (e *UserController) loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request LoginRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		token, err := e.userService.Login(request.Email, request.Password)
		if err != nil {
			c.JSON(401, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"token": token})
	}
}

func (e *UserController) getSelfHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := e.userService.GetUserFromAuthHeader(c)
		if err != nil {
			c.JSON(401, gin.H{"error": "Not authenticated"})
			return
		}
		c.JSON(200, toUserResponse(user))
	}
}

func (e *UserController) createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request UserCreate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.CreateUser(request.Email, request.Password, request.Permissions)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toUserResponse(user))
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserCreate struct {
	Email       string   `json:"email" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	Permissions []string `json:"permissions" binding:"required"`
}

type UserResponse struct {
	Id          int      `json:"id"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}

func toUserResponse(user *repository.User) *UserResponse {
	return &UserResponse{
		Id:          user.Id,
		Email:       user.Email,
		Permissions: user.Permissions,
	}
}
