package middleware

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression negotiates zstd or gzip encoding with the client and
// compresses responses that clear the size threshold. zstd is preferred
// when the client accepts both.
//
// A response is compressed only when all of these hold:
//   - the client's Accept-Encoding admits zstd or gzip,
//   - the handler declared a Content-Length strictly above minSize,
//   - the Content-Type is not an image type.
//
// A minSize of zero or below disables compression entirely. Responses with
// no declared Content-Length pass through uncompressed.
func Compression(minSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if minSize <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept-Encoding")

			encoding := negotiateEncoding(r.Header.Get("Accept-Encoding"))
			if encoding == "" {
				next.ServeHTTP(w, r)
				return
			}

			cw := &compressWriter{
				ResponseWriter: w,
				encoding:       encoding,
				minSize:        minSize,
			}
			defer cw.close()

			next.ServeHTTP(cw, r)
		})
	}
}

// negotiateEncoding picks the response encoding from an Accept-Encoding
// header value, preferring zstd over gzip. Returns empty when neither is
// acceptable.
func negotiateEncoding(acceptEncoding string) string {
	var hasZstd, hasGzip bool
	for _, part := range strings.Split(acceptEncoding, ",") {
		token, quality, found := strings.Cut(strings.TrimSpace(part), ";")
		if found && strings.TrimSpace(quality) == "q=0" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(token)) {
		case "zstd":
			hasZstd = true
		case "gzip":
			hasGzip = true
		}
	}
	if hasZstd {
		return "zstd"
	}
	if hasGzip {
		return "gzip"
	}
	return ""
}

// compressWriter wraps http.ResponseWriter and decides at WriteHeader time,
// once the handler's response headers are known, whether to install an
// encoder.
type compressWriter struct {
	http.ResponseWriter
	encoding    string
	minSize     int64
	encoder     io.WriteCloser
	wroteHeader bool
}

// WriteHeader applies the compression predicate against the headers the
// handler has set and, if it passes, swaps in the negotiated encoder.
func (cw *compressWriter) WriteHeader(code int) {
	if cw.wroteHeader {
		return
	}
	cw.wroteHeader = true

	if cw.shouldCompress() {
		switch cw.encoding {
		case "zstd":
			if enc, err := zstd.NewWriter(cw.ResponseWriter); err == nil {
				cw.encoder = enc
			}
		case "gzip":
			cw.encoder = gzip.NewWriter(cw.ResponseWriter)
		}

		// Headers change only once an encoder is actually in place, so
		// a failed encoder never mislabels an uncompressed body.
		if cw.encoder != nil {
			h := cw.Header()
			h.Set("Content-Encoding", cw.encoding)
			h.Del("Content-Length")
		}
	}

	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	if cw.encoder != nil {
		return cw.encoder.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

// shouldCompress reports whether the response, as declared by its headers,
// clears the size threshold and is not an image.
func (cw *compressWriter) shouldCompress() bool {
	contentLength := cw.Header().Get("Content-Length")
	if contentLength == "" {
		return false
	}
	size, err := strconv.ParseInt(contentLength, 10, 64)
	if err != nil || size <= cw.minSize {
		return false
	}
	return !strings.HasPrefix(cw.Header().Get("Content-Type"), "image/")
}

// close flushes the encoder, if one was installed.
func (cw *compressWriter) close() {
	if cw.encoder != nil {
		_ = cw.encoder.Close()
	}
}
