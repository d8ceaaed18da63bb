package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/wacrm/internal/api/middleware"
	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/services"
	"github.com/yoockh/wacrm/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// FlatError is the body of the chat and speech endpoints. Callers surface
// Error verbatim.
type FlatError struct {
	Error string     `json:"error"`
	Code  utils.Code `json:"code,omitempty"`
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

// writeFlatError answers with the given status regardless of the error code.
// A provider rejection carries its status and body in the message.
func writeFlatError(c *gin.Context, status int, err error) {
	msg := http.StatusText(status)
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		msg = services.DescribeError(err)
	}
	c.JSON(status, FlatError{Error: msg, Code: utils.CodeOf(err)})
}

func requirePrincipal(c *gin.Context) (models.Principal, bool) {
	if p, ok := middleware.PrincipalFrom(c); ok {
		return p, true
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return models.Principal{}, false
}
