package tls

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"openquery-hq/vanguard/pkg/config"
)

// generateTestPEM returns PEM-encoded certificate and PKCS#8 key material
// for a short-lived self-signed localhost certificate.
func generateTestPEM(t *testing.T, commonName string) (certPEM, keyPEM []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM
}

func writeTestFiles(t *testing.T, certPEM, keyPEM []byte) (certFile, keyFile string) {
	t.Helper()
	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	if err := os.WriteFile(certFile, certPEM, 0o644); err != nil {
		t.Fatalf("failed to write cert file: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}
	return certFile, keyFile
}

func TestLoadCertificateChain(t *testing.T) {
	t.Run("loads a single certificate", func(t *testing.T) {
		certPEM, keyPEM := generateTestPEM(t, "test")
		certFile, _ := writeTestFiles(t, certPEM, keyPEM)

		chain, err := LoadCertificateChain(certFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chain) != 1 {
			t.Fatalf("expected 1 certificate, got %d", len(chain))
		}
	})

	t.Run("loads a multi-certificate chain in order", func(t *testing.T) {
		leafPEM, keyPEM := generateTestPEM(t, "leaf")
		interPEM, _ := generateTestPEM(t, "intermediate")
		certFile, _ := writeTestFiles(t, append(leafPEM, interPEM...), keyPEM)

		chain, err := LoadCertificateChain(certFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chain) != 2 {
			t.Fatalf("expected 2 certificates, got %d", len(chain))
		}
		leaf, err := x509.ParseCertificate(chain[0])
		if err != nil {
			t.Fatalf("failed to parse first certificate: %v", err)
		}
		if leaf.Subject.CommonName != "leaf" {
			t.Errorf("chain order not preserved, first subject %q", leaf.Subject.CommonName)
		}
	})

	t.Run("fails on missing file", func(t *testing.T) {
		if _, err := LoadCertificateChain(filepath.Join(t.TempDir(), "missing.pem")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("fails when the file has no certificates", func(t *testing.T) {
		_, keyPEM := generateTestPEM(t, "test")
		_, keyFile := writeTestFiles(t, []byte("not a certificate"), keyPEM)
		if _, err := LoadCertificateChain(keyFile); err == nil {
			t.Fatal("expected error for key file passed as certificate")
		}
	})
}

func TestLoadPrivateKey(t *testing.T) {
	t.Run("loads exactly one key", func(t *testing.T) {
		certPEM, keyPEM := generateTestPEM(t, "test")
		_, keyFile := writeTestFiles(t, certPEM, keyPEM)

		key, err := LoadPrivateKey(keyFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key == nil {
			t.Fatal("expected a key")
		}
	})

	t.Run("fails on zero keys", func(t *testing.T) {
		certPEM, keyPEM := generateTestPEM(t, "test")
		certFile, _ := writeTestFiles(t, certPEM, keyPEM)
		if _, err := LoadPrivateKey(certFile); err == nil {
			t.Fatal("expected error for certificate file passed as key")
		}
	})

	t.Run("fails on two keys", func(t *testing.T) {
		certPEM, keyPEM := generateTestPEM(t, "a")
		_, otherKeyPEM := generateTestPEM(t, "b")
		_, keyFile := writeTestFiles(t, certPEM, append(keyPEM, otherKeyPEM...))
		if _, err := LoadPrivateKey(keyFile); err == nil {
			t.Fatal("expected error for key file with two keys")
		}
	})
}

func TestServerConfig(t *testing.T) {
	t.Run("returns nil when TLS is disabled", func(t *testing.T) {
		cfg, err := ServerConfig(context.Background(), config.TLSConfig{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg != nil {
			t.Fatal("expected nil config when disabled")
		}
	})

	t.Run("rejects client certificate validation before any socket is opened", func(t *testing.T) {
		certPEM, keyPEM := generateTestPEM(t, "test")
		certFile, keyFile := writeTestFiles(t, certPEM, keyPEM)

		_, err := ServerConfig(context.Background(), config.TLSConfig{
			Enabled:        true,
			CertFile:       certFile,
			KeyFile:        keyFile,
			ValidateClient: true,
		})
		if err == nil {
			t.Fatal("expected error when mTLS is requested")
		}
	})

	t.Run("prefers h2 then http/1.1 then http/1.0", func(t *testing.T) {
		certPEM, keyPEM := generateTestPEM(t, "test")
		certFile, keyFile := writeTestFiles(t, certPEM, keyPEM)

		cfg, err := ServerConfig(context.Background(), config.TLSConfig{
			Enabled:  true,
			CertFile: certFile,
			KeyFile:  keyFile,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"h2", "http/1.1", "http/1.0"}
		if len(cfg.NextProtos) != len(want) {
			t.Fatalf("expected %v, got %v", want, cfg.NextProtos)
		}
		for i := range want {
			if cfg.NextProtos[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, cfg.NextProtos)
			}
		}
	})

	t.Run("fails on unreadable certificate", func(t *testing.T) {
		_, err := ServerConfig(context.Background(), config.TLSConfig{
			Enabled:  true,
			CertFile: filepath.Join(t.TempDir(), "missing.pem"),
			KeyFile:  filepath.Join(t.TempDir(), "missing.pem"),
		})
		if err == nil {
			t.Fatal("expected error for missing certificate file")
		}
	})
}

func TestReloader(t *testing.T) {
	certPEM, keyPEM := generateTestPEM(t, "before")
	certFile, keyFile := writeTestFiles(t, certPEM, keyPEM)

	reloader, err := NewReloader(certFile, keyFile)
	if err != nil {
		t.Fatalf("failed to create reloader: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("failed to start reloader: %v", err)
	}

	subject := func() string {
		cert := reloader.GetCertificate()
		if cert == nil {
			return ""
		}
		parsed, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return ""
		}
		return parsed.Subject.CommonName
	}

	if got := subject(); got != "before" {
		t.Fatalf("expected initial certificate, got subject %q", got)
	}

	newCertPEM, newKeyPEM := generateTestPEM(t, "after")
	if err := os.WriteFile(keyFile, newKeyPEM, 0o600); err != nil {
		t.Fatalf("failed to rotate key: %v", err)
	}
	if err := os.WriteFile(certFile, newCertPEM, 0o644); err != nil {
		t.Fatalf("failed to rotate certificate: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if subject() == "after" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("certificate was not reloaded, subject still %q", subject())
}
