package assets

import (
	"errors"
	"fmt"
)

const (
	CaptureKindNoImage         = "no_image"
	CaptureKindNoSource        = "no_source"
	CaptureKindCaptureFailed   = "capture_failed"
	CaptureKindUnsupportedData = "unsupported_data"
)

// CaptureError marks a preview that could not be produced. Callers degrade to
// "no preview" and never surface it to the host.
type CaptureError struct {
	Kind    string
	Message string
	Err     error
}

func (e *CaptureError) Error() string {
	if e == nil {
		return "preview capture error"
	}
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("preview capture error: %s", e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *CaptureError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newCaptureError(kind, message string, err error) *CaptureError {
	return &CaptureError{Kind: kind, Message: message, Err: err}
}

// AsCaptureError extracts a *CaptureError from err's chain.
func AsCaptureError(err error) (*CaptureError, bool) {
	if err == nil {
		return nil, false
	}
	var captureErr *CaptureError
	if errors.As(err, &captureErr) {
		return captureErr, true
	}
	return nil, false
}
