package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slidewise/slidewise-server/middleware"
	"github.com/slidewise/slidewise-server/services"
)

type AuthController struct {
	auth services.AuthService
}

func NewAuthController(auth services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register creates the account, runs onboarding and returns a token.
func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	_, token, err := ac.auth.Register(c.Request.Context(), req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.Header(middleware.TokenHeader, token)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type loginReq struct {
	Identifier string `json:"identifier"`
	// Email is the older field name; it may hold a username too.
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}

	_, token, err := ac.auth.Login(c.Request.Context(), services.LoginInput{
		Identifier: identifier,
		Password:   req.Password,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.Header(middleware.TokenHeader, token)
	c.JSON(http.StatusOK, gin.H{"token": token})
}
