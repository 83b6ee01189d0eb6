package relay

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/inisipanji/sawebagi/pkg/donation"
)

var (
	// ErrMalformedPayload is returned when the body is not valid JSON
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnknownPlatform is returned when no platform matches the payload
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrInvalidSignature is returned when a configured signature check fails
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidData is returned when the normalized event fails validation
	ErrInvalidData = errors.New("invalid data")
)

// Error is a client-caused ingestion failure. Its message is safe to return
// to the webhook sender.
type Error struct {
	Status   int
	Platform donation.Platform
	Message  string
	err      error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

func malformedPayload(cause error) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: "Invalid JSON",
		err:     fmt.Errorf("%w: %v", ErrMalformedPayload, cause),
	}
}

func unknownPlatform() *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: "Invalid data - unknown platform. Supported: " + donation.SupportedPlatforms(),
		err:     ErrUnknownPlatform,
	}
}

func invalidSignature(p donation.Platform) *Error {
	return &Error{
		Status:   http.StatusUnauthorized,
		Platform: p,
		Message:  fmt.Sprintf("Invalid %s signature", p.DisplayName()),
		err:      ErrInvalidSignature,
	}
}

func invalidData(p donation.Platform, cause error) *Error {
	err := ErrInvalidData
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidData, cause)
	}
	return &Error{
		Status:   http.StatusBadRequest,
		Platform: p,
		Message:  fmt.Sprintf("Invalid data from %s", p),
		err:      err,
	}
}

// StatusCode maps an error returned by Relay to an HTTP status. Anything that
// is not an *Error is a storage failure.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Reason returns a short label for metrics and logs.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrUnknownPlatform):
		return "unknown_platform"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrInvalidData):
		return "invalid_data"
	default:
		return "storage_error"
	}
}

// PlatformOf returns the platform an error was attributed to, if any.
func PlatformOf(err error) donation.Platform {
	var e *Error
	if errors.As(err, &e) {
		return e.Platform
	}
	return donation.PlatformUnknown
}
