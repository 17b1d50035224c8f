package http

import (
	"fmt"
	"net/http"
)

// Codes carried in AppError.Code.
const (
	CodeRateLimited = "ERR_RATE_LIMITED"
	CodeUpstream    = "ERR_UPSTREAM"
	CodeInternal    = "ERR_INTERNAL"
)

// AppError is an error with an HTTP status, rendered inside the response
// envelope. Err is logged but never serialized.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Field: field, Message: message, Status: status}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// TooManyRequestsError is returned by the inbound rate limiter.
func TooManyRequestsError(message string) *AppError {
	return NewAppError(CodeRateLimited, "", message, http.StatusTooManyRequests)
}

// UpstreamError reports a failing dependency such as the price provider.
func UpstreamError(message string) *AppError {
	return NewAppError(CodeUpstream, "", message, http.StatusBadGateway)
}

func InternalError(message string) *AppError {
	return NewAppError(CodeInternal, "", message, http.StatusInternalServerError)
}
