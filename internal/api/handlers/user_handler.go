package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/services"
	"github.com/docvault/docvault/internal/utils"
)

type UserHandler struct {
	auth  services.AuthService
	users services.UserService
}

func NewUserHandler(auth services.AuthService, users services.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UserHandler.Signup", "invalid request body", err))
		return
	}

	user, err := h.auth.SignUp(c.Request.Context(), req.Username, req.Password, models.Role(req.Role))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListApplicants serves the recruiter-only applicant listing.
func (h *UserHandler) ListApplicants(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}

	rows, err := h.users.ListApplicants(c.Request.Context(), skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
