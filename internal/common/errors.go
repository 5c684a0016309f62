package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error taxonomy shared by every service. Services return these (wrapped with
// context via %w); handlers translate them into HTTP responses without leaking
// storage detail.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrValidation         = errors.New("validation failed")
	ErrTenantSuspended    = errors.New("tenant suspended")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTransient          = errors.New("transient store failure")
)

// StockInsufficientError reports a failed check-and-decrement. Available is
// the quantity observed when the decrement was refused, so the caller can
// decide whether a smaller dispense is possible.
type StockInsufficientError struct {
	Available int
	Requested int
}

func (e *StockInsufficientError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// RespondError maps a service error onto the wire envelope. Cross-tenant and
// absent entities are indistinguishable by design.
func RespondError(c echo.Context, err error) error {
	var stockErr *StockInsufficientError
	switch {
	case errors.As(err, &stockErr):
		return c.JSON(http.StatusConflict, CreateErrorResponse("STOCK_INSUFFICIENT", "Insufficient stock", map[string]string{
			"available": fmt.Sprintf("%d", stockErr.Available),
			"requested": fmt.Sprintf("%d", stockErr.Requested),
		}))
	case errors.Is(err, ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
	case errors.Is(err, ErrForbidden):
		return c.JSON(http.StatusForbidden, CreateErrorResponse("FORBIDDEN", "Insufficient permissions", nil))
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", "Resource not found", nil))
	case errors.Is(err, ErrInvalidState):
		return c.JSON(http.StatusConflict, CreateErrorResponse("INVALID_STATE", "Invalid state transition", nil))
	case errors.Is(err, ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, CreateErrorResponse("INVALID_QUANTITY", "Resulting quantity would be negative", nil))
	case errors.Is(err, ErrValidation):
		return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", nil))
	case errors.Is(err, ErrTenantSuspended):
		return c.JSON(http.StatusForbidden, CreateErrorResponse("TENANT_SUSPENDED", "Tenant is suspended", nil))
	case errors.Is(err, ErrServiceUnavailable):
		return c.JSON(http.StatusServiceUnavailable, CreateErrorResponse("SERVICE_UNAVAILABLE", "Tenant is under maintenance", nil))
	case errors.Is(err, ErrTransient):
		return c.JSON(http.StatusServiceUnavailable, CreateErrorResponse("TRANSIENT", "Temporary failure, safe to retry", nil))
	default:
		return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", "Operation could not be completed", nil))
	}
}
