package sideshift

import "fmt"

// ErrorCode is the coarse classification of a failed provider call.
type ErrorCode string

const (
	CodeNetworkError       ErrorCode = "network_error"
	CodeInvalidRequest     ErrorCode = "invalid_request"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeForbidden          ErrorCode = "forbidden"
	CodeNotFound           ErrorCode = "not_found"
	CodeValidationError    ErrorCode = "validation_error"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeInternalError      ErrorCode = "internal_error"
	CodeServiceUnavailable ErrorCode = "service_unavailable"
	CodeTooEarly           ErrorCode = "too_early"
	CodeUnknown            ErrorCode = "unknown"
)

// APIError is the single error shape produced by the client. Transport
// failures carry CodeNetworkError and no status; HTTP failures carry the
// mapped code, the status, and whatever the provider put in the body.
type APIError struct {
	Code    ErrorCode
	Status  int
	Message string
	Body    map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("sideshift: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("sideshift: %s", e.Code)
}

// codeForStatus maps an HTTP status to the coarse error taxonomy.
func codeForStatus(status int) ErrorCode {
	switch status {
	case 400:
		return CodeInvalidRequest
	case 401:
		return CodeUnauthorized
	case 403:
		return CodeForbidden
	case 404:
		return CodeNotFound
	case 422:
		return CodeValidationError
	case 429:
		return CodeRateLimited
	case 500:
		return CodeInternalError
	case 502, 503, 504:
		return CodeServiceUnavailable
	default:
		return CodeUnknown
	}
}
