package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCollector(t *testing.T) {
	t.Run("records request counts by method and status", func(t *testing.T) {
		collector := NewCollector(Config{Enabled: true})

		collector.RecordRequest(http.MethodGet, 200, 5*time.Millisecond)
		collector.RecordRequest(http.MethodGet, 200, 7*time.Millisecond)
		collector.RecordRequest(http.MethodPost, 429, time.Millisecond)

		families, err := collector.Registry().Gather()
		if err != nil {
			t.Fatalf("Gather: %v", err)
		}

		var total float64
		for _, family := range families {
			if family.GetName() != "vanguard_http_requests_total" {
				continue
			}
			for _, metric := range family.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
		}
		if total != 3 {
			t.Errorf("requests_total = %v, want 3", total)
		}
	})

	t.Run("serves the exposition format over HTTP", func(t *testing.T) {
		collector := NewCollector(Config{Enabled: true})
		collector.RecordRequest(http.MethodGet, 200, time.Millisecond)

		srv := httptest.NewServer(collector.Handler())
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		if err != nil {
			t.Fatalf("scrape: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "vanguard_http_requests_total") {
			t.Errorf("exposition is missing the request counter:\n%s", body)
		}
		if !strings.Contains(string(body), "vanguard_http_request_duration_seconds") {
			t.Errorf("exposition is missing the duration histogram:\n%s", body)
		}
	})

	t.Run("disabled collector records nothing", func(t *testing.T) {
		collector := NewCollector(Config{Enabled: false})
		collector.RecordRequest(http.MethodGet, 200, time.Millisecond)

		families, err := collector.Registry().Gather()
		if err != nil {
			t.Fatalf("Gather: %v", err)
		}
		if len(families) != 0 {
			t.Errorf("expected empty registry, got %d families", len(families))
		}
	})

	t.Run("custom namespace prefixes metric names", func(t *testing.T) {
		collector := NewCollector(Config{Enabled: true, Namespace: "custom"})
		collector.RecordRequest(http.MethodGet, 200, time.Millisecond)

		families, err := collector.Registry().Gather()
		if err != nil {
			t.Fatalf("Gather: %v", err)
		}
		for _, family := range families {
			if !strings.HasPrefix(family.GetName(), "custom_") {
				t.Errorf("metric %s does not use the custom namespace", family.GetName())
			}
		}
	})
}
