package errors

import (
	"errors"
	"fmt"
)

// Upstream data-provider errors

var (
	// ErrUpstreamAuth indicates the market data provider rejected our credentials.
	// Fatal for the request; retried at most a small bounded number of times.
	ErrUpstreamAuth = errors.New("upstream provider rejected credentials")

	// ErrRateLimited indicates the provider throttled us. Retryable with backoff.
	ErrRateLimited = errors.New("upstream provider rate limited")

	// ErrUpstreamUnavailable indicates a network failure or provider outage
	ErrUpstreamUnavailable = errors.New("upstream provider unavailable")

	// ErrMalformedPayload indicates an unexpected payload shape from a provider feed.
	// Absorbed at the normalization boundary, never propagated past it.
	ErrMalformedPayload = errors.New("malformed provider payload")
)

// Analysis errors

var (
	// ErrNoTradableData indicates the chain or quote resolved to nothing usable.
	// A normal, user-visible outcome: distinct from a system failure.
	ErrNoTradableData = errors.New("no tradable data for symbol")
)

// Generic errors

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates a rejected tracked-suggestion status change
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")
)

// DomainError is the structured error payload surfaced to callers: a stable
// machine-readable code, human-readable detail, and optional remediation hint.
type DomainError struct {
	Code        string
	Message     string
	Remediation string
	Err         error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// WithRemediation attaches a remediation hint
func (e *DomainError) WithRemediation(hint string) *DomainError {
	e.Remediation = hint
	return e
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
