package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/services"
	"github.com/docvault/docvault/internal/utils"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token exchanges form credentials for a bearer token
// (OAuth2 password flow shape: form fields username and password).
func (h *AuthHandler) Token(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Token", "username and password are required", nil))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), username, password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
