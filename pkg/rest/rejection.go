package rest

import "fmt"

// Kind identifies the cause of a rejection. The set mirrors the failure
// causes the classifier knows how to render; anything else falls into
// KindInternal.
type Kind int

const (
	// KindUnsupportedMediaType is a handler-level Content-Type mismatch.
	KindUnsupportedMediaType Kind = iota

	// KindMalformedQueryString is an unparseable query string.
	KindMalformedQueryString

	// KindInvalidJSON is a request body that failed JSON parsing.
	KindInvalidJSON

	// KindBodyDeserialize is a generic body deserialization failure.
	KindBodyDeserialize

	// KindTransportUnsupportedMediaType is a Content-Type mismatch detected
	// by the transport layer rather than a handler. Classified identically
	// to KindUnsupportedMediaType; both are kept deliberately.
	KindTransportUnsupportedMediaType

	// KindUnsupportedEncoding is an unsupported Content-Encoding.
	KindUnsupportedEncoding

	// KindCorruptedBody is a body that failed decompression.
	KindCorruptedBody

	// KindInvalidQueryParameter is a query parameter with an invalid value.
	KindInvalidQueryParameter

	// KindLengthRequired is a request missing a required Content-Length.
	KindLengthRequired

	// KindMissingHeader is a request missing a required header.
	KindMissingHeader

	// KindInvalidHeader is a header with an invalid value.
	KindInvalidHeader

	// KindPayloadTooLarge is a body exceeding the configured limit.
	KindPayloadTooLarge

	// KindTooManyRequests is a rate limit violation.
	KindTooManyRequests

	// KindInvalidArgument is an invalid path or body argument reported by a
	// handler.
	KindInvalidArgument

	// KindMethodNotAllowed is a matched path with an unsupported method.
	KindMethodNotAllowed

	// KindNotFound is a structural mismatch: no filter matched the request.
	KindNotFound

	// KindInternal is any unclassified failure. The raw cause is logged
	// server-side and never echoed to the client.
	KindInternal
)

// Rejection is one reason a route filter declined to produce a reply.
type Rejection struct {
	// Kind is the failure cause.
	Kind Kind

	// Message describes the failure for the client, except for
	// KindInternal where it stays server-side.
	Message string

	// Cause is the underlying error, if any. Logged, never serialized.
	Cause error
}

// Terminal reports whether this rejection ends the request. Structural
// mismatches (not found, method not allowed) let composition fall through to
// the next filter; everything else came from a matched filter and must not
// reach a different filter's handler.
func (r *Rejection) Terminal() bool {
	switch r.Kind {
	case KindNotFound, KindMethodNotAllowed:
		return false
	default:
		return true
	}
}

func (r *Rejection) String() string {
	return fmt.Sprintf("rejection(kind=%d): %s", r.Kind, r.Message)
}

// UnsupportedMediaType rejects a request whose Content-Type a handler does
// not accept.
func UnsupportedMediaType(contentType string) *Rejection {
	return &Rejection{
		Kind:    KindUnsupportedMediaType,
		Message: fmt.Sprintf("unsupported media type %q", contentType),
	}
}

// TransportUnsupportedMediaType rejects a Content-Type at the transport
// layer.
func TransportUnsupportedMediaType(contentType string) *Rejection {
	return &Rejection{
		Kind:    KindTransportUnsupportedMediaType,
		Message: fmt.Sprintf("unsupported media type %q", contentType),
	}
}

// MalformedQueryString rejects an unparseable query string.
func MalformedQueryString(err error) *Rejection {
	return &Rejection{
		Kind:    KindMalformedQueryString,
		Message: fmt.Sprintf("failed to parse query string: %v", err),
		Cause:   err,
	}
}

// InvalidJSON rejects a body that failed JSON parsing.
func InvalidJSON(err error) *Rejection {
	return &Rejection{
		Kind:    KindInvalidJSON,
		Message: fmt.Sprintf("failed to parse JSON request body: %v", err),
		Cause:   err,
	}
}

// BodyDeserialize rejects a body that failed deserialization.
func BodyDeserialize(err error) *Rejection {
	return &Rejection{
		Kind:    KindBodyDeserialize,
		Message: fmt.Sprintf("failed to deserialize request body: %v", err),
		Cause:   err,
	}
}

// UnsupportedEncoding rejects an unsupported Content-Encoding.
func UnsupportedEncoding(encoding string) *Rejection {
	return &Rejection{
		Kind:    KindUnsupportedEncoding,
		Message: fmt.Sprintf("unsupported content encoding %q", encoding),
	}
}

// CorruptedBody rejects a body that failed decompression.
func CorruptedBody(err error) *Rejection {
	return &Rejection{
		Kind:    KindCorruptedBody,
		Message: fmt.Sprintf("corrupted request body: %v", err),
		Cause:   err,
	}
}

// InvalidQueryParameter rejects a query parameter with an invalid value.
func InvalidQueryParameter(name string, err error) *Rejection {
	return &Rejection{
		Kind:    KindInvalidQueryParameter,
		Message: fmt.Sprintf("invalid query parameter %q: %v", name, err),
		Cause:   err,
	}
}

// LengthRequired rejects a request missing a required Content-Length.
func LengthRequired() *Rejection {
	return &Rejection{
		Kind:    KindLengthRequired,
		Message: "a content-length header is required",
	}
}

// MissingHeader rejects a request missing a required header.
func MissingHeader(name string) *Rejection {
	return &Rejection{
		Kind:    KindMissingHeader,
		Message: fmt.Sprintf("missing required header %q", name),
	}
}

// InvalidHeader rejects a header with an invalid value.
func InvalidHeader(name string, err error) *Rejection {
	return &Rejection{
		Kind:    KindInvalidHeader,
		Message: fmt.Sprintf("invalid header %q: %v", name, err),
		Cause:   err,
	}
}

// PayloadTooLarge rejects a body exceeding the configured limit.
func PayloadTooLarge(limit int64) *Rejection {
	return &Rejection{
		Kind:    KindPayloadTooLarge,
		Message: fmt.Sprintf("request body exceeds the %d byte limit", limit),
	}
}

// TooManyRequests rejects a request that exceeded a rate limit.
func TooManyRequests() *Rejection {
	return &Rejection{
		Kind:    KindTooManyRequests,
		Message: "too many requests",
	}
}

// InvalidArgument rejects an invalid path or body argument.
func InvalidArgument(msg string) *Rejection {
	return &Rejection{
		Kind:    KindInvalidArgument,
		Message: msg,
	}
}

// MethodNotAllowed rejects a matched path with an unsupported method.
// It is non-terminal: another filter may still match the request.
func MethodNotAllowed() *Rejection {
	return &Rejection{
		Kind:    KindMethodNotAllowed,
		Message: "HTTP method not allowed",
	}
}

// NotFound rejects a request the filter did not structurally match.
// It is non-terminal.
func NotFound() *Rejection {
	return &Rejection{
		Kind:    KindNotFound,
		Message: "Route not found",
	}
}

// Internal rejects a request for an unclassified server-side reason.
func Internal(err error) *Rejection {
	return &Rejection{
		Kind:    KindInternal,
		Message: "internal server error",
		Cause:   err,
	}
}
