package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"openquery-hq/vanguard/pkg/limits/ratelimit"
	"openquery-hq/vanguard/pkg/rest"
	"openquery-hq/vanguard/pkg/telemetry/health"
	"openquery-hq/vanguard/pkg/telemetry/metrics"
)

// testServer wires the filter list into a registry the way the real
// server does.
type testServer struct {
	registry *rest.Registry
	store    *IndexStore
	levelVar *slog.LevelVar
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *testServer {
	t.Helper()

	store := NewIndexStore()
	levelVar := new(slog.LevelVar)
	collector := metrics.NewCollector(metrics.Config{Enabled: true})

	deps := Deps{
		Store:        store,
		Limiter:      limiter,
		MaxBodyBytes: 1024,
		LevelVar:     levelVar,
		Build:        BuildInfo{Version: "0.1.0", Commit: "abc1234", GoVersion: "go1.25"},
		NodeID:       "node-1",
		StartTime:    time.Now(),
		Health:       health.New(time.Second),
		Metrics:      collector.Handler(),
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testServer{
		registry: rest.NewRegistry(log, Filters(deps)...),
		store:    store,
		levelVar: levelVar,
	}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.registry.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var apiErr rest.Error
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("body is not an error payload: %v (%s)", err, w.Body.String())
	}
	return apiErr.Message
}

func TestSearchRoutes(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.store.Create("logs")
	ts.store.Ingest("logs", [][]byte{
		[]byte(`{"message":"connection refused"}`),
		[]byte(`{"message":"all good"}`),
	})

	t.Run("GET with query parameters", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/logs/search?query=connection", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var resp SearchResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.NumHits != 1 {
			t.Errorf("NumHits = %d, want 1", resp.NumHits)
		}
	})

	t.Run("POST with a JSON body", func(t *testing.T) {
		body := strings.NewReader(`{"query":"good","max_hits":5}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/search", body)
		req.Header.Set("Content-Type", "application/json")

		w := ts.do(req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown query parameter is rejected", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/logs/search?querry=x", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("non-numeric max_hits is rejected", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/logs/search?query=x&max_hits=many", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("malformed JSON body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/search", strings.NewReader(`{"query":`))
		req.Header.Set("Content-Type", "application/json")

		w := ts.do(req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("non-JSON content type is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/search", strings.NewReader("query=x"))
		req.Header.Set("Content-Type", "text/plain")

		w := ts.do(req)
		if w.Code != http.StatusUnsupportedMediaType {
			t.Errorf("status = %d, want 415", w.Code)
		}
	})

	t.Run("unsupported method yields 405", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodPatch, "/api/v1/logs/search", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", w.Code)
		}
	})

	t.Run("missing index yields 404 with a reason", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/absent/search?query=x", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
		if msg := errorMessage(t, w); !strings.Contains(msg, "absent") {
			t.Errorf("message %q does not name the index", msg)
		}
	})
}

func TestIngestRoutes(t *testing.T) {
	newIngestServer := func(t *testing.T, limiter *ratelimit.Limiter) *testServer {
		ts := newTestServer(t, limiter)
		ts.store.Create("logs")
		return ts
	}

	t.Run("accepts newline-delimited JSON", func(t *testing.T) {
		ts := newIngestServer(t, nil)
		body := strings.NewReader(`{"a":1}` + "\n" + `{"a":2}` + "\n")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/ingest", body)

		w := ts.do(req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var resp IngestResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.NumDocsForProcessing != 2 {
			t.Errorf("accepted %d docs, want 2", resp.NumDocsForProcessing)
		}
	})

	t.Run("accepts a gzip-encoded body", func(t *testing.T) {
		ts := newIngestServer(t, nil)

		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		gw.Write([]byte(`{"compressed":true}` + "\n"))
		gw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/ingest", bytes.NewReader(buf.Bytes()))
		req.Header.Set("Content-Encoding", "gzip")

		w := ts.do(req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing content length yields 411", func(t *testing.T) {
		ts := newIngestServer(t, nil)
		// Wrapping the reader hides its length from NewRequest.
		body := struct{ io.Reader }{strings.NewReader(`{"a":1}`)}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/ingest", body)

		w := ts.do(req)
		if w.Code != http.StatusLengthRequired {
			t.Errorf("status = %d, want 411", w.Code)
		}
	})

	t.Run("oversized body yields 413", func(t *testing.T) {
		ts := newIngestServer(t, nil)
		big := strings.NewReader(`{"pad":"` + strings.Repeat("x", 2048) + `"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/ingest", big)

		w := ts.do(req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", w.Code)
		}
	})

	t.Run("unsupported content encoding yields 415", func(t *testing.T) {
		ts := newIngestServer(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/ingest", strings.NewReader(`{"a":1}`))
		req.Header.Set("Content-Encoding", "br")

		w := ts.do(req)
		if w.Code != http.StatusUnsupportedMediaType {
			t.Errorf("status = %d, want 415", w.Code)
		}
	})

	t.Run("corrupted gzip body yields 400", func(t *testing.T) {
		ts := newIngestServer(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/ingest", strings.NewReader("definitely not gzip"))
		req.Header.Set("Content-Encoding", "gzip")

		w := ts.do(req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("invalid document yields 400", func(t *testing.T) {
		ts := newIngestServer(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/ingest", strings.NewReader("not a document\n"))

		w := ts.do(req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("exhausted rate limit yields 429", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(
			ratelimit.Config{Capacity: 1, RefillPerSecond: 0.001},
			nil,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)
		ts := newIngestServer(t, limiter)

		for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/logs/ingest", strings.NewReader(`{"a":1}`+"\n"))
			req.RemoteAddr = "203.0.113.9:4242"
			w := ts.do(req)
			if w.Code != want {
				t.Errorf("request %d: status = %d, want %d", i+1, w.Code, want)
			}
		}
	})
}

func TestIndexRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("create then list and describe", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/indexes", strings.NewReader(`{"index_id":"logs"}`))
		req.Header.Set("Content-Type", "application/json")

		if w := ts.do(req); w.Code != http.StatusOK {
			t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
		}

		if w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/indexes", nil)); w.Code != http.StatusOK {
			t.Errorf("list status = %d", w.Code)
		}
		if w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/indexes/logs", nil)); w.Code != http.StatusOK {
			t.Errorf("describe status = %d", w.Code)
		}
	})

	t.Run("invalid index ID yields 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/indexes", strings.NewReader(`{"index_id":"1bad"}`))
		req.Header.Set("Content-Type", "application/json")

		if w := ts.do(req); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("delete then describe yields 404", func(t *testing.T) {
		if w := ts.do(httptest.NewRequest(http.MethodDelete, "/api/v1/indexes/logs", nil)); w.Code != http.StatusOK {
			t.Fatalf("delete status = %d", w.Code)
		}
		if w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/indexes/logs", nil)); w.Code != http.StatusNotFound {
			t.Errorf("describe status = %d, want 404", w.Code)
		}
	})
}

func TestInfoRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("cluster snapshot names this node", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/cluster", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var snapshot ClusterSnapshot
		if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if snapshot.NodeID != "node-1" || len(snapshot.LiveNodes) != 1 {
			t.Errorf("unexpected snapshot: %+v", snapshot)
		}
	})

	t.Run("version reports build info", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/version", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var build BuildInfo
		if err := json.Unmarshal(w.Body.Bytes(), &build); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if build.Version != "0.1.0" {
			t.Errorf("version = %q", build.Version)
		}
	})

	t.Run("openapi document lists the search route", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "/api/v1/{index}/search") {
			t.Error("openapi document is missing the search route")
		}
	})
}

func TestUIRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("root redirects to the search UI", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusMovedPermanently {
			t.Fatalf("status = %d, want 301", w.Code)
		}
		if got := w.Header().Get("Location"); got != "/ui/search" {
			t.Errorf("Location = %q", got)
		}
	})

	t.Run("search UI is served from embedded assets", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/ui/search", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if contentType := w.Header().Get("Content-Type"); !strings.HasPrefix(contentType, "text/html") {
			t.Errorf("Content-Type = %q", contentType)
		}
	})

	t.Run("unknown asset falls through to 404", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/ui/missing.css", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestOperationalRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("probes respond", func(t *testing.T) {
		for _, path := range []string{"/health/livez", "/health/readyz"} {
			w := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != http.StatusOK {
				t.Errorf("%s status = %d, want 200", path, w.Code)
			}
		}
	})

	t.Run("metrics exposition responds", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("debug reports runtime state", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/api/developer/debug", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var info DebugInfo
		if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if info.NumGoroutines <= 0 {
			t.Errorf("unexpected debug info: %+v", info)
		}
	})

	t.Run("log level can be changed over HTTP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/developer/log-level", strings.NewReader("debug"))
		w := ts.do(req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		if got := ts.levelVar.Level(); got != slog.LevelDebug {
			t.Errorf("level = %v, want debug", got)
		}
	})

	t.Run("unknown log level yields 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/developer/log-level", strings.NewReader("shout"))
		if w := ts.do(req); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestUnmatchedRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/no/such/route", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Route not found" {
		t.Errorf("message = %q, want the fixed not-found message", msg)
	}
}
