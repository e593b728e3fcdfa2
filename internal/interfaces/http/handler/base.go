package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mangodeliveries/backend/internal/domain/shared"
	"github.com/mangodeliveries/backend/internal/infrastructure/logger"
	"github.com/mangodeliveries/backend/internal/interfaces/http/dto"
)

// BaseHandler provides the alert and error plumbing shared by all handlers
type BaseHandler struct{}

// Alert sends a user-facing alert with the given status
func (h *BaseHandler) Alert(c *gin.Context, status int, message string) {
	c.JSON(status, dto.NewAlert(message))
}

// HandleError translates a service error into the canonical HTTP
// response. Domain errors surface their message as an alert; anything
// else is logged and hidden behind a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.HTTPStatus(domainErr.Code), dto.NewAlert(domainErr.Message))
		return
	}

	logger.GetGinLogger(c).Error("unhandled request error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.NewAlert("Something went wrong. Please try again later."))
}
