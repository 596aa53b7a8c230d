package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/api/middleware"
	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/utils"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

func requireUser(c *gin.Context) (*models.User, bool) {
	if user, ok := middleware.CurrentUser(c); ok {
		return user, true
	}
	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return nil, false
}

// pagination reads skip/limit query params with the usual bounds:
// skip >= 0, 1 <= limit <= 1000, limit defaulting to 100.
func pagination(c *gin.Context) (skip, limit int, ok bool) {
	skip, ok = intQuery(c, "skip", 0, 0, -1)
	if !ok {
		return 0, 0, false
	}
	limit, ok = intQuery(c, "limit", defaultLimit, 1, maxLimit)
	if !ok {
		return 0, 0, false
	}
	return skip, limit, true
}

func intQuery(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || (max >= 0 && v > max) {
		writeError(c, utils.E(utils.CodeInvalidArgument, "Query", "invalid "+name+" parameter", err))
		return 0, false
	}
	return v, true
}
