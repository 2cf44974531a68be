// Package util provides utility functions and types for the dispatch core.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., PatternError, BodyError). Each type
//     implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
//
// All custom error types must implement:
//
//	Error() string           – human-readable message
//	Unwrap() error           – if the type wraps another error
//	Is(target error) bool    – for errors.Is() compatibility
package util

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTimeout         = errors.New("timeout")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrConfigInvalid   = errors.New("invalid configuration")
)

// PatternError represents a path template compilation error.
// Pattern errors are configuration errors: fatal at startup, never at
// request time.
type PatternError struct {
	Template string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid pattern %q: %s: %v", e.Template, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid pattern %q: %s", e.Template, e.Message)
}

// Unwrap returns the underlying error.
func (e *PatternError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *PatternError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	_, ok := target.(*PatternError)
	return ok || errors.Is(e.Cause, target)
}

// NewPatternError creates a new PatternError.
func NewPatternError(template, message string) *PatternError {
	return &PatternError{Template: template, Message: message}
}

// NewPatternErrorWithCause creates a new PatternError with a cause.
func NewPatternErrorWithCause(template, message string, cause error) *PatternError {
	return &PatternError{Template: template, Message: message, Cause: cause}
}

// ConfigError represents a configuration-related error.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok || errors.Is(e.Cause, target)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with a cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// RouteNotFoundError represents a route not found error.
type RouteNotFoundError struct {
	Path   string
	Method string
}

// Error implements the error interface.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route found for %s %s", e.Method, e.Path)
}

// Is checks if the error matches the target.
func (e *RouteNotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*RouteNotFoundError)
	return ok
}

// NewRouteNotFoundError creates a new RouteNotFoundError.
func NewRouteNotFoundError(method, path string) *RouteNotFoundError {
	return &RouteNotFoundError{Path: path, Method: method}
}

// BodyError represents a failure while admitting, reading, or parsing a
// request body. Body errors map to 4xx responses and never crash the
// process.
type BodyError struct {
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *BodyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("body error: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("body error: %s", e.Reason)
}

// Unwrap returns the underlying error.
func (e *BodyError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *BodyError) Is(target error) bool {
	if target == ErrInvalidInput {
		return true
	}
	_, ok := target.(*BodyError)
	return ok || errors.Is(e.Cause, target)
}

// NewBodyError creates a new BodyError.
func NewBodyError(reason string) *BodyError {
	return &BodyError{Reason: reason}
}

// NewBodyErrorWithCause creates a new BodyError with a cause.
func NewBodyErrorWithCause(reason string, cause error) *BodyError {
	return &BodyError{Reason: reason, Cause: cause}
}

// HookError represents a failure raised by a pre-handler hook.
type HookError struct {
	Hook  string
	Route string
	Cause error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("hook %s failed for route %s: %v", e.Hook, e.Route, e.Cause)
	}
	return fmt.Sprintf("hook %s failed for route %s", e.Hook, e.Route)
}

// Unwrap returns the underlying error.
func (e *HookError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *HookError) Is(target error) bool {
	_, ok := target.(*HookError)
	return ok || errors.Is(e.Cause, target)
}

// NewHookError creates a new HookError.
func NewHookError(hook, route string, cause error) *HookError {
	return &HookError{Hook: hook, Route: route, Cause: cause}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsClientError returns true if the error maps to a 4xx response.
func IsClientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotFound) {
		return true
	}

	if errors.Is(err, ErrInvalidInput) {
		return true
	}

	if errors.Is(err, ErrPayloadTooLarge) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 400 && httpErr.Status < 500
	}

	return false
}
