// Package api provides the media platform API client and its error types.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
)

// Sentinel errors for the platform's failure classes. API methods wrap these
// so callers can branch with errors.Is or the helper predicates below.
var (
	// ErrAuthentication indicates the key pair was rejected (401/403).
	ErrAuthentication = errors.New("authentication failed")

	// ErrNotFound indicates the resource or folder does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the scope's hourly budget is exhausted (429).
	ErrRateLimited = errors.New("rate limited")

	// ErrValidation indicates the request was malformed (400), e.g. a bad
	// search expression or an unsupported transformation.
	ErrValidation = errors.New("validation failed")

	// ErrQuotaExceeded indicates the account hit a plan limit (420).
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// APIError is a non-2xx platform response with its decoded error message.
type APIError struct {
	Op         string // operation, e.g. "list resources"
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the matching sentinel so that
// errors.Is(err, ErrNotFound) works on any APIError.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case nethttp.StatusUnauthorized, nethttp.StatusForbidden:
		return ErrAuthentication
	case nethttp.StatusNotFound:
		return ErrNotFound
	case nethttp.StatusTooManyRequests:
		return ErrRateLimited
	case nethttp.StatusBadRequest:
		return ErrValidation
	case 420: // platform's "plan limit reached"
		return ErrQuotaExceeded
	}
	return nil
}

// newAPIError reads and decodes an error response body. The platform wraps
// messages in {"error": {"message": ...}}; anything else is kept raw.
func newAPIError(op string, resp *nethttp.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	msg := strings.TrimSpace(string(body))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}

	return &APIError{Op: op, StatusCode: resp.StatusCode, Message: msg}
}

// IsAuthError checks if an error indicates rejected credentials.
// Surfaced to the user as a configuration problem, never retried.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthentication) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "invalid api key") ||
		strings.Contains(errStr, "invalid signature")
}

// IsNotFoundError checks if an error indicates a missing resource.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}

// IsRateLimitError checks if an error indicates scope throttling.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "throttl")
}

// IsValidationError checks if an error indicates a malformed request.
//
// This detects validation failures from multiple sources:
//  1. Wrapped ErrValidation error
//  2. Error messages containing common validation phrases
//
// Usage:
//
//	assets, err := client.Search(ctx, expr, 0)
//	if api.IsValidationError(err) {
//	    // Bad expression; show it to the user, don't retry
//	}
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrValidation) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	validationIndicators := []string{
		"invalid expression",
		"invalid public_id",
		"unsupported format",
		"missing required parameter",
	}
	for _, indicator := range validationIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// IsQuotaError checks if an error indicates an exhausted plan limit.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "quota")
}
