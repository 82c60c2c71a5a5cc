package main

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"openquery-hq/vanguard/pkg/api"
	"openquery-hq/vanguard/pkg/cli"
	"openquery-hq/vanguard/pkg/config"
	"openquery-hq/vanguard/pkg/limits/ratelimit"
	"openquery-hq/vanguard/pkg/limits/storage"
	securityTLS "openquery-hq/vanguard/pkg/security/tls"
	"openquery-hq/vanguard/pkg/server"
	"openquery-hq/vanguard/pkg/telemetry/health"
	"openquery-hq/vanguard/pkg/telemetry/logging"
	"openquery-hq/vanguard/pkg/telemetry/metrics"
)

// Maintenance schedules for the background cron runner.
const (
	limiterPruneSchedule = "@hourly"
	certExpirySchedule   = "@daily"

	// Limiter buckets idle longer than this are dropped on prune.
	limiterIdleCutoff = 24 * time.Hour
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Vanguard REST server",
	Long: `Start the Vanguard REST server with the specified configuration.

The server listens on the configured address and serves the search, ingest,
index management, cluster, and operational route groups behind the shared
middleware pipeline.

Examples:
  # Start with default config
  vanguard run

  # Start with custom config
  vanguard run --config /etc/vanguard/config.yaml

  # Override listen address
  vanguard run --listen 0.0.0.0:7280

  # Validate config without starting server
  vanguard run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

// loadRunConfig loads the configuration file, falling back to defaults when
// the implicit default path does not exist. An explicitly passed --config
// that cannot be read is always an error.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		return config.NewDefault(), nil
	}
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, levelVar, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	startTime := time.Now()
	nodeID := newNodeID()
	printBanner(cfg, nodeID)

	collector := metrics.NewCollector(metrics.Config{
		Enabled:   cfg.Telemetry.Metrics.Enabled,
		Namespace: cfg.Telemetry.Metrics.Namespace,
	})

	// Rate limiter with optional persistent state
	var limiter *ratelimit.Limiter
	var limiterBackend storage.Backend
	if cfg.Ingest.RateLimit.Enabled {
		limiterBackend, err = newLimiterBackend(&cfg.Ingest.RateLimit)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		limiter = ratelimit.NewLimiter(ratelimit.Config{
			Capacity:        cfg.Ingest.RateLimit.Capacity,
			RefillPerSecond: cfg.Ingest.RateLimit.RefillPerSecond,
		}, limiterBackend, logger)
		defer limiter.Close()

		fmt.Printf("✓ Ingest rate limiting enabled (%s backend)\n", cfg.Ingest.RateLimit.StorageBackend)
	}

	store := api.NewIndexStore()
	checker := newHealthChecker(limiterBackend)

	filters := api.Filters(api.Deps{
		Store:        store,
		Limiter:      limiter,
		MaxBodyBytes: cfg.Ingest.MaxBodyBytes,
		LevelVar:     levelVar,
		Build:        buildInfo(),
		NodeID:       nodeID,
		StartTime:    startTime,
		Health:       checker,
		Metrics:      metricsHandler(collector, cfg),
	})

	handler := server.Pipeline(&cfg.Server, logger, collector.RecordRequest, filters...)
	srv := server.New(cfg, handler, logger)

	// Background maintenance
	scheduler := cron.New()
	if limiter != nil {
		if _, err := scheduler.AddFunc(limiterPruneSchedule, func() {
			pruned := limiter.Prune(context.Background(), time.Now().Add(-limiterIdleCutoff))
			if pruned > 0 {
				slog.Debug("pruned idle rate limit buckets", "count", pruned)
			}
		}); err != nil {
			return cli.NewCommandError("run", err)
		}
	}
	if cfg.Security.TLS.Enabled {
		certFile := cfg.Security.TLS.CertFile
		if _, err := scheduler.AddFunc(certExpirySchedule, func() {
			checkCertificateExpiry(certFile)
		}); err != nil {
			return cli.NewCommandError("run", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start server in background goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting REST server",
			"address", cfg.Server.ListenAddress,
			"tls_enabled", cfg.Security.TLS.Enabled,
		)
		errChan <- srv.Start(ctx)
	}()

	select {
	case <-srv.Ready():
	case err := <-errChan:
		return cli.NewCommandError("run", fmt.Errorf("server failed to start: %w", err))
	}

	scheme := "http"
	if cfg.Security.TLS.Enabled {
		scheme = "https"
	}
	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", srv.Addr())
	fmt.Printf("✓ Readiness probe: %s://%s/health/readyz\n", scheme, srv.Addr())
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: %s://%s/metrics\n", scheme, srv.Addr())
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		return nil
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		if err := <-errChan; err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}
		fmt.Println("✓ Server stopped")
		return nil
	}
}

// newLimiterBackend builds the rate limiter state backend from config.
func newLimiterBackend(cfg *config.RateLimitConfig) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		backend, err := storage.NewSQLiteBackend(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open rate limit storage: %w", err)
		}
		return backend, nil
	case "", "memory":
		return storage.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit storage backend: %s", cfg.StorageBackend)
	}
}

// newHealthChecker builds the readiness checker. The limiter storage backend
// participates in readiness when one is configured.
func newHealthChecker(backend storage.Backend) *health.Checker {
	checker := health.New(0)
	if backend != nil {
		checker.RegisterCheck("ratelimit_storage", func(ctx context.Context) error {
			_, err := backend.Load(ctx, "healthcheck")
			return err
		})
	}
	return checker
}

// metricsHandler returns the exposition handler, or nil when metrics are
// disabled so the /metrics route is not registered at all.
func metricsHandler(collector *metrics.Collector, cfg *config.Config) http.Handler {
	if !cfg.Telemetry.Metrics.Enabled {
		return nil
	}
	return collector.Handler()
}

func printBanner(cfg *config.Config, nodeID string) {
	fmt.Printf("Vanguard v%s\n", Version)
	fmt.Printf("Node ID: %s\n", nodeID)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("configuration summary",
		"listen_address", cfg.Server.ListenAddress,
		"metrics_enabled", cfg.Telemetry.Metrics.Enabled,
		"rate_limit_enabled", cfg.Ingest.RateLimit.Enabled,
		"tls_enabled", cfg.Security.TLS.Enabled,
	)
}

// newNodeID derives a stable-looking node identifier from the hostname with
// a random suffix to disambiguate nodes sharing a host.
func newNodeID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "node"
	}
	return fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])
}

// checkCertificateExpiry warns when the serving certificate is close to
// expiring. Runs daily from the maintenance scheduler.
func checkCertificateExpiry(certFile string) {
	data, err := os.ReadFile(certFile)
	if err != nil {
		slog.Warn("certificate expiry check failed", "error", err)
		return
	}
	block, _ := pem.Decode(data)
	if block == nil {
		slog.Warn("certificate expiry check failed", "error", "no PEM block found")
		return
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		slog.Warn("certificate expiry check failed", "error", err)
		return
	}
	if days, warning := securityTLS.CheckCertificateExpiration(cert); warning != "" {
		slog.Warn("certificate expiring soon", "expires_in_days", days)
	}
}
