package api

import "fmt"

// ErrorCode categorizes a bridge error. It is carried in the `error.code`
// field of a response.failed event and in the `error.type` field of a unary
// JSON error body.
type ErrorCode string

const (
	// ErrorCodeInvalidRequest marks an incoming body that is unparseable or
	// missing required fields.
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrorCodeUpstreamTransport marks a network, DNS, or TLS failure while
	// initiating the upstream call.
	ErrorCodeUpstreamTransport ErrorCode = "upstream_transport_error"

	// ErrorCodeUpstream marks a non-2xx upstream status; the message carries
	// the status and raw body.
	ErrorCodeUpstream ErrorCode = "upstream_error"

	// ErrorCodeUpstreamStream marks a transport error mid-stream while
	// reading upstream chunks.
	ErrorCodeUpstreamStream ErrorCode = "upstream_stream_error"

	// ErrorCodeUpstreamDecode marks a 2xx upstream response whose body was
	// not valid JSON (unary mode only).
	ErrorCodeUpstreamDecode ErrorCode = "upstream_decode_error"
)

// BridgeError is a structured error surfaced to callers in whichever framing
// matches their expected mode.
type BridgeError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *BridgeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequestError creates a BridgeError for malformed incoming requests.
func NewInvalidRequestError(message string) *BridgeError {
	return &BridgeError{Code: ErrorCodeInvalidRequest, Message: message}
}

// NewUpstreamTransportError creates a BridgeError for failures initiating the
// upstream call.
func NewUpstreamTransportError(message string) *BridgeError {
	return &BridgeError{Code: ErrorCodeUpstreamTransport, Message: message}
}

// NewUpstreamError creates a BridgeError for non-success upstream statuses.
func NewUpstreamError(message string) *BridgeError {
	return &BridgeError{Code: ErrorCodeUpstream, Message: message}
}

// NewUpstreamStreamError creates a BridgeError for mid-stream read failures.
func NewUpstreamStreamError(message string) *BridgeError {
	return &BridgeError{Code: ErrorCodeUpstreamStream, Message: message}
}

// NewUpstreamDecodeError creates a BridgeError for non-JSON unary upstream
// bodies.
func NewUpstreamDecodeError(message string) *BridgeError {
	return &BridgeError{Code: ErrorCodeUpstreamDecode, Message: message}
}
