package rest

import (
	"log/slog"
	"net/http"
)

// classificationOrder maps rejection kinds to status codes in mandatory
// priority order. Several causes can simultaneously describe one malformed
// request (both "unsupported content type" and "body deserialize error" may
// apply); clients need one deterministic answer, so the first matching entry
// wins. Reordering this table is a breaking change to the error contract.
var classificationOrder = []struct {
	kind   Kind
	status int
}{
	{KindUnsupportedMediaType, http.StatusUnsupportedMediaType},
	{KindMalformedQueryString, http.StatusBadRequest},
	{KindInvalidJSON, http.StatusBadRequest},
	{KindBodyDeserialize, http.StatusBadRequest},
	{KindTransportUnsupportedMediaType, http.StatusUnsupportedMediaType},
	{KindUnsupportedEncoding, http.StatusUnsupportedMediaType},
	{KindCorruptedBody, http.StatusBadRequest},
	{KindInvalidQueryParameter, http.StatusBadRequest},
	{KindLengthRequired, http.StatusLengthRequired},
	{KindMissingHeader, http.StatusBadRequest},
	{KindInvalidHeader, http.StatusBadRequest},
	{KindPayloadTooLarge, http.StatusRequestEntityTooLarge},
	{KindTooManyRequests, http.StatusTooManyRequests},
	{KindInvalidArgument, http.StatusBadRequest},
	{KindMethodNotAllowed, http.StatusMethodNotAllowed},
	{KindNotFound, http.StatusNotFound},
}

// Classify tests the accumulated rejections against the priority order and
// returns the Error for the first matching cause. ok is false when no known
// cause matched, letting a non-final recovery point pass the rejections
// outward for a later stage to classify.
func Classify(rejections []*Rejection) (Error, bool) {
	for _, entry := range classificationOrder {
		for _, rej := range rejections {
			if rej.Kind != entry.kind {
				continue
			}
			return Error{
				StatusCode: entry.status,
				Message:    rej.Message,
			}, true
		}
	}
	return Error{}, false
}

// ClassifyFinal is the total classification used at the outermost recovery
// point: it always returns an Error. Unmatched rejection sets degrade to 404
// when empty (nothing matched the route) and to 500 otherwise, with the raw
// cause logged server-side and never echoed to the client.
func ClassifyFinal(rejections []*Rejection, log *slog.Logger) Error {
	if apiErr, ok := Classify(rejections); ok {
		return apiErr
	}
	if len(rejections) == 0 {
		return Error{
			StatusCode: http.StatusNotFound,
			Message:    "Route not found",
		}
	}

	for _, rej := range rejections {
		log.Error("unclassified rejection",
			"message", rej.Message,
			"cause", rej.Cause,
		)
	}
	return Error{
		StatusCode: http.StatusInternalServerError,
		Message:    "internal server error",
	}
}
