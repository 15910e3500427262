package apiclient

import (
	"context"
	"errors"
	"fmt"
)

// FallbackMessage is shown when a failed response carries no message.
const FallbackMessage = "Request failed"

var (
	// ErrTransport indicates that no response was received.
	ErrTransport = errors.New("apiclient: transport failure")
	// ErrRequestFailed indicates a non-2xx response.
	ErrRequestFailed = errors.New("apiclient: request failed")
	// ErrMalformedResponse indicates a 2xx response whose body is not an envelope.
	ErrMalformedResponse = errors.New("apiclient: malformed response")
	// ErrUnexpectedPayload indicates an envelope whose data has the wrong shape.
	ErrUnexpectedPayload = errors.New("apiclient: unexpected payload")
)

// TransportError reports a request that never produced a response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// RequestFailedError reports a non-2xx response. Its text is the backend's
// message so callers can match on it.
type RequestFailedError struct {
	Status  int
	Message string
}

func (e *RequestFailedError) Error() string { return e.Message }

// Is matches ErrRequestFailed.
func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

// DecodeError reports a 2xx body that could not be parsed.
type DecodeError struct {
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response (status %d): %v", e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches ErrMalformedResponse.
func (e *DecodeError) Is(target error) bool { return target == ErrMalformedResponse }

// notifiedError marks an error the client already surfaced to the viewer.
type notifiedError struct {
	error
}

func (e notifiedError) Unwrap() error { return e.error }

// Reported reports whether err was already shown to the viewer by the
// client, in which case callers must not show it again.
func Reported(err error) bool {
	var n notifiedError
	return errors.As(err, &n)
}

// UserMessage is the text shown to the viewer for err.
func UserMessage(err error) string {
	var failed *RequestFailedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &failed):
		if failed.Message == "" {
			return FallbackMessage
		}
		return failed.Message
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Request cancelled"
	case errors.Is(err, ErrTransport):
		return "Failed to fetch"
	case errors.Is(err, ErrMalformedResponse):
		return "Invalid response from server"
	default:
		return "An error occurred"
	}
}

// ErrorKind maps client errors to a stable logging label.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrRequestFailed):
		return "request_failed"
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrUnexpectedPayload):
		return "malformed_response"
	default:
		return "unexpected"
	}
}
