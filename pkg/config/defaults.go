package config

import "time"

// Default values applied to unset configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:7280"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20

	DefaultMaxBodyBytes      = int64(10 << 20)
	DefaultRateLimitCapacity = int64(100)
	DefaultRateLimitRefill   = 50.0
	DefaultRateLimitBackend  = "memory"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
	DefaultMetricsNamespace  = "vanguard"
)

// ApplyDefaults fills in default values for any unset fields.
// It must be called after unmarshaling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Ingest.MaxBodyBytes == 0 {
		cfg.Ingest.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Ingest.RateLimit.Capacity == 0 {
		cfg.Ingest.RateLimit.Capacity = DefaultRateLimitCapacity
	}
	if cfg.Ingest.RateLimit.RefillPerSecond == 0 {
		cfg.Ingest.RateLimit.RefillPerSecond = DefaultRateLimitRefill
	}
	if cfg.Ingest.RateLimit.StorageBackend == "" {
		cfg.Ingest.RateLimit.StorageBackend = DefaultRateLimitBackend
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// NewDefault returns a Config populated with default values only.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
