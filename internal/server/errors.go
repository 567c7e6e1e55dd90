package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

func (v *ValidationErrors) add(field, code, message string) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Code: code, Message: message})
}

func (v *ValidationErrors) empty() bool {
	return len(v.Errors) == 0
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, internalErrorPayload()
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if field, ok := hookupValidationField(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   field,
					Code:    validationErrorCode(err),
					Message: validationErrorMessage(err),
				},
			},
		}
	}

	switch {
	case errors.Is(err, hookupdomain.ErrNameConflict):
		return http.StatusConflict, conflictPayload(err, "name")
	case errors.Is(err, hookupdomain.ErrEndpointConflict):
		return http.StatusConflict, conflictPayload(err, "endpoint")
	case errors.Is(err, ErrNotFound),
		errors.Is(err, hookupdomain.ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "smart furniture hookup not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, internalErrorPayload()
	}
}

func internalErrorPayload() errorPayload {
	return errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func conflictPayload(err error, field string) errorPayload {
	code := field + "_conflict"
	return errorPayload{
		Type:    "conflict",
		Message: err.Error(),
		Errors: []ValidationError{
			{Field: field, Code: code, Message: field + " already exists"},
		},
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func hookupValidationField(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "request", true
	case errors.Is(err, hookupdomain.ErrInvalidConsumptionType):
		return "type", true
	case errors.Is(err, hookupdomain.ErrInvalidConsumptionUnit):
		return "consumptionUnit", true
	case errors.Is(err, hookupdomain.ErrInvalidID):
		return "id", true
	default:
		return "", false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, hookupdomain.ErrInvalidConsumptionType):
		return "invalid_consumption_type"
	case errors.Is(err, hookupdomain.ErrInvalidConsumptionUnit):
		return "invalid_consumption_unit"
	case errors.Is(err, hookupdomain.ErrInvalidID):
		return "invalid_id"
	default:
		return "invalid_value"
	}
}

func validationErrorMessage(err error) string {
	switch {
	case errors.Is(err, hookupdomain.ErrInvalidConsumptionType):
		return "type must be one of gas, water, electricity"
	case errors.Is(err, hookupdomain.ErrInvalidConsumptionUnit):
		return "consumption unit does not match the consumption type"
	case errors.Is(err, hookupdomain.ErrInvalidID):
		return "id must be a UUID"
	default:
		return "invalid request"
	}
}

// classifyErrorForLog returns the response type and code logged per request.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}
