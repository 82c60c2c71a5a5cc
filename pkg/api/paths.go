package api

import "strings"

// segments splits a URL path into its non-empty components.
func segments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// isJSONContentType reports whether a Content-Type header value denotes
// a JSON body. An absent content type is accepted as JSON.
func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	return mediaType == "application/json" || mediaType == "application/x-ndjson" ||
		strings.HasSuffix(mediaType, "+json")
}
