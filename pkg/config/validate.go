package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate checks the configuration for invalid or inconsistent values.
// Validation failures are hard startup errors: they are reported before any
// socket is opened.
func Validate(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address %q is not host:port: %w", cfg.Server.ListenAddress, err)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	if cfg.Server.Compression.MinSizeBytes < 0 {
		return fmt.Errorf("server.compression.min_size_bytes must not be negative")
	}
	for _, origin := range cfg.Server.CORS.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("server.cors.allowed_origins must not contain empty entries")
		}
	}
	for name := range cfg.Server.ExtraHeaders {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("server.extra_headers must not contain empty header names")
		}
	}

	if cfg.Ingest.MaxBodyBytes <= 0 {
		return fmt.Errorf("ingest.max_body_bytes must be positive")
	}
	if cfg.Ingest.RateLimit.Enabled {
		if cfg.Ingest.RateLimit.Capacity <= 0 {
			return fmt.Errorf("ingest.rate_limit.capacity must be positive")
		}
		if cfg.Ingest.RateLimit.RefillPerSecond <= 0 {
			return fmt.Errorf("ingest.rate_limit.refill_per_second must be positive")
		}
		switch cfg.Ingest.RateLimit.StorageBackend {
		case "memory":
		case "sqlite":
			if cfg.Ingest.RateLimit.StoragePath == "" {
				return fmt.Errorf("ingest.rate_limit.storage_path is required for the sqlite backend")
			}
		default:
			return fmt.Errorf("ingest.rate_limit.storage_backend %q is not supported (memory, sqlite)", cfg.Ingest.RateLimit.StorageBackend)
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is not supported (debug, info, warn, error)", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format %q is not supported (json, text)", cfg.Telemetry.Logging.Format)
	}

	if cfg.Security.TLS.Enabled {
		if cfg.Security.TLS.CertFile == "" {
			return fmt.Errorf("security.tls.cert_file is required when TLS is enabled")
		}
		if cfg.Security.TLS.KeyFile == "" {
			return fmt.Errorf("security.tls.key_file is required when TLS is enabled")
		}
		if cfg.Security.TLS.ValidateClient {
			return fmt.Errorf("security.tls.validate_client: mTLS is not supported on the REST API")
		}
	}

	return nil
}
