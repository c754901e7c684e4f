package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supplylens/backend/internal/domain"
	"github.com/supplylens/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// StatusClientClosedRequest is reported when the caller went away first
const StatusClientClosedRequest = 499

// statusFor maps a service error onto an HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidURL), errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPlatformNotFound), errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the caller-facing message; internal errors are not echoed
func messageFor(err error) string {
	switch statusFor(err) {
	case http.StatusUnprocessableEntity:
		return domain.ErrExtractionFailed.Error()
	case http.StatusNotFound, http.StatusTooManyRequests:
		return rootMessage(err)
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusBadGateway:
		return domain.ErrPersistence.Error()
	case http.StatusGatewayTimeout:
		return "request timed out"
	case StatusClientClosedRequest:
		return "request cancelled"
	default:
		return "internal server error"
	}
}

func rootMessage(err error) string {
	for _, sentinel := range []error{domain.ErrPlatformNotFound, domain.ErrProductNotFound, domain.ErrRateLimited} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// respondError writes the error body and records the error on the context.
// An optional detail replaces the derived message.
func respondError(c *gin.Context, err error, detail ...string) {
	status := statusFor(err)
	msg := messageFor(err)
	if len(detail) > 0 {
		msg = detail[0]
	}

	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c).Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func respondBadRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "invalid request body",
		"details": err.Error(),
	})
}
