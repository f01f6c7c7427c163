package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/pairlink/internal/logger"
	scandomain "github.com/smallbiznis/pairlink/internal/scan/domain"
	"go.uber.org/zap"
)

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code }

var (
	ErrUnauthorized = &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "missing or unknown caller identity"}
	ErrNotFound     = &apiError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
)

func invalidRequestError() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "malformed request body"}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: code, Field: field, Message: message}
}

// AbortWithError translates service errors into HTTP responses. Validation
// failures map to 400, identity failures to 401, anything unexpected to 500.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	switch {
	case errors.Is(err, scandomain.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": &apiError{
			Code:    "unauthenticated",
			Message: "caller identity could not be resolved",
		}})
	case errors.Is(err, scandomain.ErrInvalidPayload):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": newValidationError("payload", "invalid_payload", "payload must be a non-empty token")})
	case errors.Is(err, scandomain.ErrInvalidCoordinates):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": newValidationError("coordinates", "invalid_coordinates", "latitude/longitude must be finite decimal degrees")})
	case errors.Is(err, scandomain.ErrInvalidAccuracy):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": newValidationError("accuracy", "invalid_accuracy", "accuracy must be a non-negative finite number")})
	default:
		logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": &apiError{
			Code:    "internal_error",
			Message: "internal error",
		}})
	}
}
