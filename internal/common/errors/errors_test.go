package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *mockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

// ==========================
// Classification Tests
// ==========================

func TestSurfaceAndCategory(t *testing.T) {
	tests := []struct {
		err      *StandardError
		surface  Surface
		category string
		retry    bool
	}{
		{err: NewValidationFailedError("email", "bad"), surface: SurfaceInline, category: "INPUT"},
		{err: NewInvalidSelectionError(), surface: SurfaceInline, category: "INPUT"},
		{err: NewEmptyCartError(), surface: SurfaceInline, category: "INPUT"},
		{err: NewAuthenticationFailedError("401"), surface: SurfaceBanner, category: "ACCESS"},
		{err: NewForbiddenError("403"), surface: SurfaceRedirect, category: "ACCESS"},
		{err: NewNotFoundError("franchise", "404"), surface: SurfaceRefresh, category: "STALE_STATE"},
		{err: NewCheckoutFailedError(fmt.Errorf("500")), surface: SurfaceRetry, category: "REMOTE", retry: true},
		{err: NewVerificationFailedError("invalid"), surface: SurfaceInformational, category: "REMOTE", retry: true},
		{err: NewServiceUnavailableError("list menu", fmt.Errorf("refused")), surface: SurfaceRetry, category: "REMOTE", retry: true},
		{err: NewRequestInFlightError("checkout"), surface: SurfaceSilent, category: "USAGE"},
		{err: NewMissingTargetError("none"), surface: SurfaceBanner, category: "USAGE"},
		{err: NewOrderTotalMismatchError("0.008", "0.009"), surface: SurfaceBanner, category: "DEFECT"},
		{err: NewOrderStatusUnknownError(fmt.Errorf("unreadable")), surface: SurfaceBanner, category: "DEFECT"},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.surface, SurfaceFor(tt.err.Code))
			assert.Equal(t, tt.category, GetErrorCategory(tt.err.Code))
			assert.Equal(t, tt.retry, tt.err.Retryable)
			assert.Equal(t, tt.retry, IsRetryableErrorCode(tt.err.Code))
		})
	}
}

func TestCodeOf_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("delete franchise: %w", NewNotFoundError("franchise", "gone"))

	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
	assert.True(t, Is(wrapped, ErrCodeNotFound))
	assert.False(t, Is(wrapped, ErrCodeForbidden))
	assert.Equal(t, ErrCodeInternal, CodeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.False(t, Is(nil, ErrCodeInternal))
}

func TestStandardError_Format(t *testing.T) {
	assert.Equal(t, "StandardError[VALIDATION_FAILED]: Please correct the highlighted field (email)",
		NewValidationFailedError("email", "x").Error())
	assert.Equal(t, "StandardError[EMPTY_CART]: Select at least one pizza", NewEmptyCartError().Error())
}

// ==========================
// Reporter Tests
// ==========================

func TestReporter_Report(t *testing.T) {
	log := new(mockLogger)
	log.On("Warn", "Storefront action failed", mock.MatchedBy(func(f map[string]interface{}) bool {
		return f["action"] == "login" && f["errorCode"] == "AUTHENTICATION_FAILED"
	})).Once()

	n := NewReporter(log).Report("login", NewAuthenticationFailedError("401"))
	require.NotNil(t, n)
	assert.Equal(t, ErrCodeAuthenticationFailed, n.Code)
	assert.Equal(t, "Unknown email or password", n.Message)
	assert.Equal(t, SurfaceBanner, n.Surface)
	log.AssertExpectations(t)
}

func TestReporter_DefectsLogAtError(t *testing.T) {
	log := new(mockLogger)
	log.On("Error", "Storefront action failed", mock.Anything).Twice()
	r := NewReporter(log)

	n := r.Report("pay", NewOrderTotalMismatchError("0.008", "0.009"))
	assert.Equal(t, ErrCodeOrderTotalMismatch, n.Code)

	n = r.Report("pay", fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, n.Code)
	assert.Equal(t, SurfaceBanner, n.Surface)
	log.AssertExpectations(t)
}

func TestReporter_NilError(t *testing.T) {
	log := new(mockLogger)
	assert.Nil(t, NewReporter(log).Report("menu", nil))
	log.AssertNotCalled(t, "Warn", mock.Anything, mock.Anything)
}
