package errors

import (
	"time"

	"pizza-storefront/internal/common/metrics"
)

// Notice is the user-visible rendering of an error.
type Notice struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Field     string    `json:"field,omitempty"`
	Surface   Surface   `json:"surface"`
	Retryable bool      `json:"retryable"`
}

// Reporter turns errors caught at the initiating component into notices.
type Reporter struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewReporter(logger Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Report normalizes err, logs it once and returns the notice a screen should show.
// A nil error yields a nil notice.
func (r *Reporter) Report(action string, err error) *Notice {
	if err == nil {
		return nil
	}
	stdErr := r.normalizeError(err)
	surface := SurfaceFor(stdErr.Code)

	r.logError(action, stdErr, surface)
	metrics.ActionErrors.WithLabelValues(action, string(stdErr.Code), GetErrorCategory(stdErr.Code)).Inc()

	return &Notice{
		Code:      stdErr.Code,
		Message:   stdErr.Message,
		Field:     stdErr.Field,
		Surface:   surface,
		Retryable: stdErr.Retryable,
	}
}

// normalizeError ensures we always have a StandardError
func (r *Reporter) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (r *Reporter) logError(action string, stdErr *StandardError, surface Surface) {
	fields := map[string]interface{}{
		"action":        action,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"field":         stdErr.Field,
		"retryable":     stdErr.Retryable,
		"surface":       string(surface),
		"errorCategory": GetErrorCategory(stdErr.Code),
	}

	switch GetErrorCategory(stdErr.Code) {
	case "DEFECT", "UNKNOWN":
		r.logger.Error("Storefront action failed", fields)
	default:
		r.logger.Warn("Storefront action failed", fields)
	}
}
