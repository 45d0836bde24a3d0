// Package errors provides the storefront error taxonomy and how each code is surfaced.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// User-facing taxonomy
const (
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeForbidden            ErrorCode = "FORBIDDEN"
	ErrCodeCheckoutFailed       ErrorCode = "CHECKOUT_FAILED"
	ErrCodeVerificationFailed   ErrorCode = "VERIFICATION_FAILED"
)

// Local workflow errors
const (
	ErrCodeInvalidSelection   ErrorCode = "INVALID_SELECTION"
	ErrCodeEmptyCart          ErrorCode = "EMPTY_CART"
	ErrCodeMissingTarget      ErrorCode = "MISSING_TARGET"
	ErrCodeRequestInFlight    ErrorCode = "REQUEST_IN_FLIGHT"
	ErrCodeOrderTotalMismatch ErrorCode = "ORDER_TOTAL_MISMATCH"
	ErrCodeOrderStatusUnknown ErrorCode = "ORDER_STATUS_UNKNOWN"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured storefront error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Field     string                 `json:"field,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is matches another StandardError by code so errors.Is works against the sentinels below.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidationFailed     = &StandardError{Code: ErrCodeValidationFailed}
	ErrAuthenticationFailed = &StandardError{Code: ErrCodeAuthenticationFailed}
	ErrNotFound             = &StandardError{Code: ErrCodeNotFound}
	ErrForbidden            = &StandardError{Code: ErrCodeForbidden}
	ErrCheckoutFailed       = &StandardError{Code: ErrCodeCheckoutFailed}
	ErrVerificationFailed   = &StandardError{Code: ErrCodeVerificationFailed}
	ErrInvalidSelection     = &StandardError{Code: ErrCodeInvalidSelection}
	ErrEmptyCart            = &StandardError{Code: ErrCodeEmptyCart}
	ErrMissingTarget        = &StandardError{Code: ErrCodeMissingTarget}
	ErrRequestInFlight      = &StandardError{Code: ErrCodeRequestInFlight}
	ErrOrderTotalMismatch   = &StandardError{Code: ErrCodeOrderTotalMismatch}
	ErrOrderStatusUnknown   = &StandardError{Code: ErrCodeOrderStatusUnknown}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a field-level validation error shown inline.
func NewValidationFailedError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Please correct the highlighted field",
		Details:   details,
		Field:     field,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationFailedError creates a bad-credentials error.
func NewAuthenticationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Unknown email or password",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates an error for a target that vanished server-side.
func NewNotFoundError(resource, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("The %s no longer exists", resource),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"resource": resource},
		Timestamp: time.Now().UTC(),
	}
}

// NewForbiddenError creates a role or ownership mismatch error.
func NewForbiddenError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeForbidden,
		Message:   "You are not allowed to do that",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCheckoutFailedError creates a retryable order submission error.
func NewCheckoutFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCheckoutFailed,
		Message:   "Your order could not be placed. Your pizzas are still in the cart",
		Details:   detailsOf(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewVerificationFailedError creates the informational verification notice.
func NewVerificationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVerificationFailed,
		Message:   "The receipt could not be verified. Your order is still placed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidSelectionError is returned when no store was chosen before checkout.
func NewInvalidSelectionError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSelection,
		Message:   "Choose a store before checking out",
		Field:     "store",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyCartError is returned when checkout is attempted with no pizzas.
func NewEmptyCartError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyCart,
		Message:   "Select at least one pizza",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingTargetError is a usage error: a confirmation screen without a selected entity.
func NewMissingTargetError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingTarget,
		Message:   "Nothing was selected",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestInFlightError marks a duplicate action that was dropped.
func NewRequestInFlightError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestInFlight,
		Message:   "Already working on it",
		Details:   fmt.Sprintf("action: %s", action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderTotalMismatchError records a defect between the displayed and confirmed totals.
func NewOrderTotalMismatchError(expected, confirmed string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderTotalMismatch,
		Message:   "Something went wrong with your order",
		Details:   fmt.Sprintf("expected total %s, confirmed total %s", expected, confirmed),
		Retryable: false,
		Metadata:  map[string]interface{}{"expected": expected, "confirmed": confirmed},
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderStatusUnknownError is returned when the service accepted an order but its
// reply could not be read. The order may exist, so submitting again is not offered.
func NewOrderStatusUnknownError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderStatusUnknown,
		Message:   "Your order may have been placed. Check your order history before ordering again",
		Details:   detailsOf(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceUnavailableError wraps network-level failures for operations with no dedicated code.
func NewServiceUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   "The pizza service is not responding. Try again",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, detailsOf(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps anything unexpected.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   detailsOf(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Surfaces
// ==========================

// Surface describes where and how a screen renders an error.
type Surface string

const (
	SurfaceInline        Surface = "inline"
	SurfaceBanner        Surface = "banner"
	SurfaceRedirect      Surface = "redirect"
	SurfaceRefresh       Surface = "refresh"
	SurfaceRetry         Surface = "retry"
	SurfaceInformational Surface = "informational"
	SurfaceSilent        Surface = "silent"
)

var surfaceMapping = map[ErrorCode]Surface{
	ErrCodeValidationFailed:     SurfaceInline,
	ErrCodeInvalidSelection:     SurfaceInline,
	ErrCodeEmptyCart:            SurfaceInline,
	ErrCodeAuthenticationFailed: SurfaceBanner,
	ErrCodeNotFound:             SurfaceRefresh,
	ErrCodeForbidden:            SurfaceRedirect,
	ErrCodeCheckoutFailed:       SurfaceRetry,
	ErrCodeServiceUnavailable:   SurfaceRetry,
	ErrCodeVerificationFailed:   SurfaceInformational,
	ErrCodeRequestInFlight:      SurfaceSilent,
	ErrCodeMissingTarget:        SurfaceBanner,
	ErrCodeOrderTotalMismatch:   SurfaceBanner,
	ErrCodeOrderStatusUnknown:   SurfaceBanner,
	ErrCodeInternal:             SurfaceBanner,
}

// SurfaceFor returns how an error code is rendered; unknown codes become banners.
func SurfaceFor(code ErrorCode) Surface {
	if s, ok := surfaceMapping[code]; ok {
		return s
	}
	return SurfaceBanner
}

// ==========================
// 4. Utility Functions
// ==========================

// AsStandard extracts a *StandardError from an error chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of a StandardError in the chain, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeCheckoutFailed, ErrCodeVerificationFailed, ErrCodeServiceUnavailable:
		return true
	default:
		return false
	}
}

// GetErrorCategory groups codes for metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidSelection, ErrCodeEmptyCart:
		return "INPUT"
	case ErrCodeAuthenticationFailed, ErrCodeForbidden:
		return "ACCESS"
	case ErrCodeNotFound:
		return "STALE_STATE"
	case ErrCodeCheckoutFailed, ErrCodeVerificationFailed, ErrCodeServiceUnavailable:
		return "REMOTE"
	case ErrCodeMissingTarget, ErrCodeRequestInFlight:
		return "USAGE"
	case ErrCodeOrderTotalMismatch, ErrCodeOrderStatusUnknown:
		return "DEFECT"
	default:
		return "UNKNOWN"
	}
}
