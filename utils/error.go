package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvariant:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondError renders err as an ErrorResponse. Unclassified errors are
// logged and hidden behind a generic 500.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	status := StatusFor(appErr.Kind)
	details := ""
	if appErr.Err != nil {
		details = appErr.Err.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.Error(appErr.Message, zap.String("kind", string(appErr.Kind)), zap.Error(appErr.Err))
	} else {
		logger.Warn(appErr.Message, zap.String("kind", string(appErr.Kind)), zap.String("details", details))
	}
	JSONError(c, status, appErr.Message, details)
}
