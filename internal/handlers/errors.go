package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/matchwise/backend/internal/services"
	"github.com/matchwise/backend/pkg/logger"
	"github.com/matchwise/backend/pkg/response"
)

// respondError maps service errors onto the response envelope. Anything
// unrecognized is an internal error and its detail is only logged.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		response.Error(c, response.NewNotFound("project not found"))
	case errors.Is(err, services.ErrMatchNotFound):
		response.Error(c, response.NewNotFound("match not found"))
	case errors.Is(err, services.ErrConfigNotFound):
		response.Error(c, response.NewNotFound("config not found"))
	case errors.Is(err, services.ErrUnknownJob):
		response.Error(c, response.NewNotFound(err.Error()))
	case errors.Is(err, services.ErrJobRunning):
		response.Error(c, response.NewConflict(err.Error()))
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("[API] Internal error")
		response.Error(c, response.NewServerError("internal server error"))
	}
}
