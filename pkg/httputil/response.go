package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careops/registry-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Kind    string `json:"kind"`
	Entity  string `json:"entity,omitempty"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response with the HTTP status mapped
// from the application error kind.
func RespondWithError(c *gin.Context, err error) {
	var body *Error
	var statusCode int

	if appErr, ok := err.(*errors.AppError); ok {
		statusCode = statusFromKind(appErr.Kind)
		body = &Error{
			Kind:    appErr.Kind.String(),
			Entity:  appErr.Entity,
			Field:   appErr.Field,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	} else {
		statusCode = http.StatusInternalServerError
		body = &Error{
			Kind:    errors.KindInternal.String(),
			Message: "internal server error",
		}
	}

	c.JSON(statusCode, Response{
		Success: false,
		Error:   body,
	})
}

func statusFromKind(kind errors.Kind) int {
	switch kind {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindReferentialIntegrity:
		return http.StatusUnprocessableEntity
	case errors.KindDuplicateIdentifier, errors.KindInvalidTransition:
		return http.StatusConflict
	case errors.KindDeliveryFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
