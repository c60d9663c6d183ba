package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes
const (
	CodeAppError   = "APP_ERROR"
	CodeAPIError   = "API_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeCache      = "CACHE_ERROR"
	CodeService    = "SERVICE_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) appError() *AppError {
	return e
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// APIError is a failed call to a third-party API. StatusCode carries the upstream status
// and Body the response body, when there was one.
type APIError struct {
	*AppError
	Upstream string
	Body     []byte
}

func NewAPIError(message, upstream string, statusCode int, context map[string]any) *APIError {
	if context == nil {
		context = map[string]any{}
	}
	context["upstream"] = upstream
	return &APIError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
		Upstream: upstream,
	}
}

func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

func (e *APIError) WithBody(body []byte) *APIError {
	e.Body = body
	return e
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: http.StatusBadRequest,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// NotFoundError marks a third-party entity that does not exist (unknown city, video without captions).
type NotFoundError struct {
	*AppError
	Resource string
	ID       string
}

func NewNotFoundError(message, resource, id string) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeNotFound,
			StatusCode: http.StatusNotFound,
			Context: map[string]any{
				"resource": resource,
				"id":       id,
			},
		},
		Resource: resource,
		ID:       id,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// StatusCode maps an error onto the HTTP status a handler should answer with.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	var notFoundErr *NotFoundError
	if stderrors.As(err, &notFoundErr) {
		return http.StatusNotFound
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return http.StatusBadGateway
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.StatusCode >= 400 {
		return appErr.StatusCode
	}

	return http.StatusInternalServerError
}

const (
	genericMessage = "Something went wrong. Please try again later."
	timeoutMessage = "The request timed out. Please try again later."
)

// UserMessage returns the text shown to the user. Validation and not-found messages are
// already written for people. Otherwise the messages of every AppError in the chain are
// joined; causes that are not AppErrors (transport errors carrying URLs, driver errors)
// never reach the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return validationErr.Message
	}

	var notFoundErr *NotFoundError
	if stderrors.As(err, &notFoundErr) {
		return notFoundErr.Message
	}

	var parts []string
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		app, ok := e.(interface{ appError() *AppError })
		if !ok {
			continue
		}
		msg := app.appError().Message
		if msg != "" && (len(parts) == 0 || parts[len(parts)-1] != msg) {
			parts = append(parts, msg)
		}
	}

	if len(parts) == 0 {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return timeoutMessage
		}
		return genericMessage
	}
	return strings.Join(parts, ": ")
}

// Is, As and New forward to the standard library so callers need a single errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func New(text string) error { return stderrors.New(text) }
