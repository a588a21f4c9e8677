// Package common holds the error vocabulary and small helpers shared by the
// scanning, validation and storage packages.
package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrTimeout              = errors.New("operation timed out")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrContentTooLarge      = errors.New("content exceeds size limit")
	ErrUnsupportedBackend   = errors.New("unsupported storage backend")
)

// WrapError prefixes err with message. A nil err stays nil.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf is WrapError with a formatted prefix
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return WrapError(err, fmt.Sprintf(format, args...))
}

// NewError is fmt.Errorf; %w verbs wrap as usual.
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError rejects a single input value, such as a config field or a
// credential attribute.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigurationError points at a config section and field. It matches
// ErrInvalidConfiguration with errors.Is.
type ConfigurationError struct {
	Section string
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	location := strings.Trim(e.Section+"."+e.Field, ".")
	if location == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration %s: %s", location, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

func NewConfigurationError(section, field, reason string) *ConfigurationError {
	return &ConfigurationError{Section: section, Field: field, Reason: reason}
}

// NetworkError means the remote side was never reached or never answered.
// It is never a rejection by the remote side.
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	msg := fmt.Sprintf("request to %s failed: %s", e.URL, e.Reason)
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{URL: url, Reason: reason, Wrapped: wrapped}
}

// HTTPError is an answer with an unexpected status code
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d from %s: %s", e.StatusCode, e.URL, e.Message)
}

func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message, URL: url}
}

// IsContextError reports whether err stems from context cancellation or deadline
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsTransportError reports whether err is a failure to reach the remote side.
// Validators map these to failed_to_check, never to invalid.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if IsContextError(err) || errors.Is(err, ErrTimeout) {
		return true
	}
	var netErr *NetworkError
	var opErr net.Error
	return errors.As(err, &netErr) || errors.As(err, &opErr)
}

// CombineErrors returns nil, the only error, or one error listing all of them.
func CombineErrors(errs []error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	msgs := make([]string, len(kept))
	for i, err := range kept {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("%d errors: %s", len(kept), strings.Join(msgs, "; "))
}

// ErrorCollector gathers the non-nil errors of a batch. The zero value is ready to use.
type ErrorCollector struct {
	errors []error
}

func (ec *ErrorCollector) Add(err error) {
	if err != nil {
		ec.errors = append(ec.errors, err)
	}
}

// AddWithContext adds err prefixed with context, usually the URL or family involved
func (ec *ErrorCollector) AddWithContext(err error, context string) {
	ec.Add(WrapError(err, context))
}

func (ec *ErrorCollector) HasErrors() bool {
	return len(ec.errors) > 0
}

// Error returns the combined error, nil when nothing was collected
func (ec *ErrorCollector) Error() error {
	return CombineErrors(ec.errors)
}
