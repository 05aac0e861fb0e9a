package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/propdesk-cashbook/internal/api_gateway/middleware"
	"github.com/propdesk-cashbook/internal/domain/shared"
)

// requestLogger scopes logger to the request's correlation id
func requestLogger(c *gin.Context, logger *slog.Logger) *slog.Logger {
	if id := middleware.GetCorrelationID(c); id != "" {
		return logger.With("correlation_id", id)
	}
	return logger
}

// respondError maps the error taxonomy onto HTTP status codes.
// Store and unknown failures never leak their message to the caller.
func respondError(c *gin.Context, logger *slog.Logger, action string, err error) {
	logger = requestLogger(c, logger)
	_ = c.Error(err)

	switch shared.KindOf(err) {
	case shared.KindValidation:
		logger.Warn("Rejected request", "action", action, "error", err)
		RespondValidationError(c, err.Error())
	case shared.KindNotFound:
		RespondNotFound(c, err.Error())
	case shared.KindConcurrency:
		logger.Warn("Concurrent update rejected", "action", action, "error", err)
		RespondConflict(c, err.Error())
	default:
		logger.Error("Failed to "+action, "error", err)
		RespondInternalError(c)
	}
}
