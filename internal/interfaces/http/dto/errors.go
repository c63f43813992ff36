package dto

import "net/http"

// Error codes surfaced by the HTTP layer itself
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "FORBIDDEN"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to 500.
var ErrorCodeHTTPStatus = map[string]int{
	// HTTP-layer errors
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	// Resource errors
	"NOT_FOUND":      http.StatusNotFound,
	"ALREADY_EXISTS": http.StatusConflict,

	// Concurrency and generation conflicts -> 409 Conflict
	"CONCURRENCY_CONFLICT":   http.StatusConflict,
	"PRICING_MISMATCH":       http.StatusConflict,
	"GENERATION_IN_PROGRESS": http.StatusConflict,

	// Authorization errors
	"FORBIDDEN":            http.StatusForbidden,
	"FORBIDDEN_TRANSITION": http.StatusForbidden,
	"NOT_SELLER_ON_ORDER":  http.StatusForbidden,

	// Business rule errors -> 422 Unprocessable Entity
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"INVALID_TRANSITION": http.StatusUnprocessableEntity,
	"ALREADY_SETTLED":    http.StatusUnprocessableEntity,
	"LINE_UNAVAILABLE":   http.StatusUnprocessableEntity,
	"EMPTY_PAYOUT":       http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	"INVALID_INPUT":         http.StatusBadRequest,
	"INVALID_STATUS":        http.StatusBadRequest,
	"INVALID_NAME":          http.StatusBadRequest,
	"INVALID_SELLER":        http.StatusBadRequest,
	"INVALID_PRODUCT":       http.StatusBadRequest,
	"INVALID_PRICE":         http.StatusBadRequest,
	"INVALID_STOCK":         http.StatusBadRequest,
	"INVALID_QUANTITY":      http.StatusBadRequest,
	"INVALID_CUSTOMER":      http.StatusBadRequest,
	"INVALID_ORDER_NUMBER":  http.StatusBadRequest,
	"INVALID_PAYOUT_NUMBER": http.StatusBadRequest,
	"INVALID_PERIOD":        http.StatusBadRequest,
	"INVALID_RATE":          http.StatusBadRequest,
	"INVALID_SCORE":         http.StatusBadRequest,
	"INVALID_TIER":          http.StatusBadRequest,
	"INVALID_MODE":          http.StatusBadRequest,
	"INVALID_POLICY":        http.StatusBadRequest,
	"INVALID_ADJUSTMENT":    http.StatusBadRequest,
	"INVALID_REASON":        http.StatusBadRequest,
	"INVALID_TRANSACTION":   http.StatusBadRequest,
	"EMPTY_ORDER":           http.StatusBadRequest,
	"LINE_NOT_FOUND":        http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
