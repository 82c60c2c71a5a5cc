// Package config defines the configuration surface for the Vanguard REST
// front door and handles loading it from YAML with defaults, validation,
// and environment variable overrides.
package config

import "time"

// Config is the root configuration structure for Vanguard.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, CORS, compression, and extra response headers.
	Server ServerConfig `yaml:"server"`

	// Ingest contains configuration for the ingest route group: body size
	// limits and rate limiting.
	Ingest IngestConfig `yaml:"ingest"`

	// Telemetry contains observability configuration: logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains TLS configuration for the listener.
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:7280", "0.0.0.0:7280").
	// Default: "127.0.0.1:7280"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Zero means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Zero means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// on a keep-alive connection.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for a graceful
	// shutdown. Connections still in flight after the timeout are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits how many bytes the server reads parsing request
	// headers. It does not limit the request body.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// Compression contains response compression configuration.
	Compression CompressionConfig `yaml:"compression"`

	// ExtraHeaders is a static set of header/value pairs appended to every
	// response. Useful for operational requirements like security headers.
	// Default: empty
	ExtraHeaders map[string]string `yaml:"extra_headers"`
}

// CORSConfig contains CORS configuration for the server.
//
// The allowed methods advertised on preflight requests are fixed:
// GET, POST, PUT, DELETE, OPTIONS.
type CORSConfig struct {
	// AllowedOrigins is the list of origins permitted to make cross-origin
	// requests. Empty disables CORS (no Access-Control-Allow-Origin header
	// is ever emitted). ["*"] allows any origin. An explicit list echoes the
	// request origin back when it is a member.
	// Default: empty
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CompressionConfig contains response compression configuration.
type CompressionConfig struct {
	// MinSizeBytes is the minimum response size, in bytes, above which a
	// response is compressed when the client accepts zstd or gzip. Image
	// content types are never compressed. Zero disables compression
	// entirely.
	// Default: 0 (disabled)
	MinSizeBytes int `yaml:"min_size_bytes"`
}

// IngestConfig contains configuration for the ingest route group.
type IngestConfig struct {
	// MaxBodyBytes is the maximum accepted ingest request body size.
	// Requests with a larger Content-Length are rejected with 413.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// RateLimit contains per-client ingest rate limiting configuration.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig contains token bucket rate limiting configuration.
type RateLimitConfig struct {
	// Enabled controls whether ingest rate limiting is applied.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Capacity is the token bucket capacity (burst size).
	// Default: 100
	Capacity int64 `yaml:"capacity"`

	// RefillPerSecond is the sustained request rate per client.
	// Default: 50
	RefillPerSecond float64 `yaml:"refill_per_second"`

	// StorageBackend selects where limiter state lives: "memory" or
	// "sqlite". The sqlite backend persists state across restarts.
	// Default: "memory"
	StorageBackend string `yaml:"storage_backend"`

	// StoragePath is the sqlite database file path. Required when
	// StorageBackend is "sqlite".
	StoragePath string `yaml:"storage_path"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "vanguard"
	Namespace string `yaml:"namespace"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// TLS contains TLS listener configuration.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS configuration for the REST listener.
type TLSConfig struct {
	// Enabled indicates whether the listener terminates TLS.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM-encoded certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded PKCS#8 private key. The file
	// must contain exactly one private key.
	KeyFile string `yaml:"key_file"`

	// ValidateClient requests mutual TLS client certificate validation.
	// Mutual TLS is not supported on the REST API; setting this to true is
	// a configuration error rejected at startup.
	// Default: false
	ValidateClient bool `yaml:"validate_client"`

	// WatchCertificates enables reloading the certificate and key when the
	// files change on disk, allowing rotation without a restart.
	// Default: false
	WatchCertificates bool `yaml:"watch_certificates"`
}
