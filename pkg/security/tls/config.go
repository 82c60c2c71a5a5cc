package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"

	"openquery-hq/vanguard/pkg/config"
)

// alpnProtocols is the negotiated protocol preference list, in order:
// HTTP/2, HTTP/1.1, HTTP/1.0.
var alpnProtocols = []string{"h2", "http/1.1", "http/1.0"}

// ServerConfig builds the crypto/tls server configuration from the TLS
// section of the node configuration. It is called once at startup; the
// resulting config is immutable and shared read-only by every connection.
//
// Requesting client certificate validation is a hard configuration failure,
// reported here before any socket is opened.
func ServerConfig(ctx context.Context, cfg config.TLSConfig) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.ValidateClient {
		return nil, fmt.Errorf("mTLS is not supported on the REST API")
	}

	cert, err := LoadKeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, err
	}
	if err := ValidateCertificate(&cert); err != nil {
		return nil, fmt.Errorf("certificate validation failed: %w", err)
	}
	logCertificateInfo(&cert)

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		NextProtos: alpnProtocols,
		ClientAuth: tls.NoClientCert,
	}

	if cfg.WatchCertificates {
		reloader, err := NewReloader(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		if err := reloader.Start(ctx); err != nil {
			return nil, err
		}
		tlsConfig.GetCertificate = reloader.GetCertificateFunc()
	} else {
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// logCertificateInfo logs subject, issuer, and expiry of the leaf
// certificate, warning when it expires within 30 days.
func logCertificateInfo(cert *tls.Certificate) {
	if cert == nil || len(cert.Certificate) == 0 {
		return
	}
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return
	}

	daysUntilExpiry, warning := CheckCertificateExpiration(x509Cert)
	if warning != "" {
		slog.Warn("certificate expiring soon",
			"subject", x509Cert.Subject.CommonName,
			"expires_in_days", daysUntilExpiry,
		)
		return
	}
	slog.Info("certificate loaded",
		"subject", x509Cert.Subject.CommonName,
		"issuer", x509Cert.Issuer.CommonName,
		"expires_in_days", daysUntilExpiry,
	)
}
