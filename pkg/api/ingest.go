package api

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"openquery-hq/vanguard/pkg/limits/ratelimit"
	"openquery-hq/vanguard/pkg/rest"
)

// ingestHandler serves POST /api/v1/{index}/ingest.
//
// Documents arrive as newline-delimited JSON. The body may be
// identity-, gzip-, or zstd-encoded; any other Content-Encoding is
// rejected before the body is read.
type ingestHandler struct {
	store        *IndexStore
	limiter      *ratelimit.Limiter
	maxBodyBytes int64
}

func (h *ingestHandler) Serve(w http.ResponseWriter, r *http.Request) *rest.Rejection {
	seg := segments(r.URL.Path)
	if len(seg) != 4 || seg[0] != "api" || seg[1] != "v1" || seg[3] != "ingest" {
		return rest.NotFound()
	}
	if r.Method != http.MethodPost {
		return rest.MethodNotAllowed()
	}
	indexID := seg[2]

	if contentType := r.Header.Get("Content-Type"); !isJSONContentType(contentType) {
		return rest.UnsupportedMediaType(contentType)
	}

	// The body limit is enforced against the declared length, so a
	// missing Content-Length is a hard failure rather than a silent
	// unbounded read.
	if r.ContentLength < 0 {
		return rest.LengthRequired()
	}
	if h.maxBodyBytes > 0 && r.ContentLength > h.maxBodyBytes {
		return rest.PayloadTooLarge(h.maxBodyBytes)
	}

	if h.limiter != nil && !h.limiter.Allow(r.Context(), clientKey(r)) {
		return rest.TooManyRequests()
	}

	body, rej := h.decodeBody(r)
	if rej != nil {
		return rej
	}

	var lines [][]byte
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return rest.CorruptedBody(err)
	}

	accepted, err := h.store.Ingest(indexID, lines)
	if err != nil {
		var notFound ErrIndexNotFound
		if errors.As(err, &notFound) {
			rest.WriteError(w, rest.Error{StatusCode: http.StatusNotFound, Message: err.Error()})
			return nil
		}
		return rest.BodyDeserialize(err)
	}

	rest.WriteJSON(w, http.StatusOK, IngestResponse{NumDocsForProcessing: accepted})
	return nil
}

// decodeBody reads the request body, applying the declared content
// encoding. The raw (encoded) bytes are capped at the body limit.
func (h *ingestHandler) decodeBody(r *http.Request) ([]byte, *rest.Rejection) {
	reader := io.Reader(r.Body)
	if h.maxBodyBytes > 0 {
		reader = io.LimitReader(reader, h.maxBodyBytes+1)
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, rest.CorruptedBody(err)
	}
	if h.maxBodyBytes > 0 && int64(len(raw)) > h.maxBodyBytes {
		return nil, rest.PayloadTooLarge(h.maxBodyBytes)
	}

	encoding := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
		return raw, nil

	case "gzip":
		gr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, rest.CorruptedBody(err)
		}
		defer gr.Close()
		decoded, err := io.ReadAll(gr)
		if err != nil {
			return nil, rest.CorruptedBody(err)
		}
		return decoded, nil

	case "zstd":
		zr, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, rest.CorruptedBody(err)
		}
		defer zr.Close()
		decoded, err := io.ReadAll(zr)
		if err != nil {
			return nil, rest.CorruptedBody(err)
		}
		return decoded, nil

	default:
		return nil, rest.UnsupportedEncoding(encoding)
	}
}

// clientKey identifies the client for rate limiting, by remote host.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
