package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// createTestCertificate writes a self-signed ECDSA certificate and PKCS#8
// key into outputDir.
func createTestCertificate(t *testing.T, outputDir string, notAfter time.Time) (certPath, keyPath string) {
	t.Helper()

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	serialNumber, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   "localhost",
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	certPath = filepath.Join(outputDir, "test-cert.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		t.Fatalf("failed to write cert: %v", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}
	keyPath = filepath.Join(outputDir, "test-key.pem")
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	return certPath, keyPath
}

func TestCertsGenerate(t *testing.T) {
	tests := []struct {
		name    string
		hosts   string
		curve   string
		wantErr bool
	}{
		{name: "localhost p256", hosts: "localhost", curve: "p256"},
		{name: "multiple hosts", hosts: "localhost,127.0.0.1,app.local", curve: "p256"},
		{name: "p384 curve", hosts: "localhost", curve: "p384"},
		{name: "invalid curve", hosts: "localhost", curve: "p521", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generateFlags.hosts = tt.hosts
			generateFlags.org = "Test Org"
			generateFlags.validity = 30
			generateFlags.curve = tt.curve
			generateFlags.output = t.TempDir()

			err := generateCertificate(certsGenerateCmd, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("generateCertificate: %v", err)
			}

			// The generated key must be a single PKCS#8 block, the only
			// encoding the server loads.
			keyPEM, err := os.ReadFile(filepath.Join(generateFlags.output, "key.pem"))
			if err != nil {
				t.Fatalf("read key: %v", err)
			}
			block, _ := pem.Decode(keyPEM)
			if block == nil || block.Type != "PRIVATE KEY" {
				t.Fatalf("key block type = %v, want PRIVATE KEY", block)
			}
			if _, err := x509.ParsePKCS8PrivateKey(block.Bytes); err != nil {
				t.Errorf("key is not PKCS#8: %v", err)
			}

			certPEM, err := os.ReadFile(filepath.Join(generateFlags.output, "cert.pem"))
			if err != nil {
				t.Fatalf("read cert: %v", err)
			}
			certBlock, _ := pem.Decode(certPEM)
			if certBlock == nil {
				t.Fatal("certificate PEM did not decode")
			}
			if _, err := x509.ParseCertificate(certBlock.Bytes); err != nil {
				t.Errorf("certificate did not parse: %v", err)
			}
		})
	}
}

func TestCertsValidate(t *testing.T) {
	t.Run("valid pair passes", func(t *testing.T) {
		certPath, keyPath := createTestCertificate(t, t.TempDir(), time.Now().AddDate(1, 0, 0))

		certsValidateFlags.certFile = certPath
		certsValidateFlags.keyFile = keyPath
		certsValidateFlags.caFile = ""

		if err := validateCertificate(certsValidateCmd, nil); err != nil {
			t.Errorf("validateCertificate: %v", err)
		}
	})

	t.Run("expired certificate fails", func(t *testing.T) {
		certPath, keyPath := createTestCertificate(t, t.TempDir(), time.Now().Add(-time.Minute))

		certsValidateFlags.certFile = certPath
		certsValidateFlags.keyFile = keyPath
		certsValidateFlags.caFile = ""

		if err := validateCertificate(certsValidateCmd, nil); err == nil {
			t.Error("expected error for expired certificate")
		}
	})

	t.Run("missing certificate fails", func(t *testing.T) {
		certsValidateFlags.certFile = filepath.Join(t.TempDir(), "missing.pem")
		certsValidateFlags.keyFile = ""
		certsValidateFlags.caFile = ""

		if err := validateCertificate(certsValidateCmd, nil); err == nil {
			t.Error("expected error for missing certificate")
		}
	})
}

func TestCertsInfo(t *testing.T) {
	certPath, _ := createTestCertificate(t, t.TempDir(), time.Now().AddDate(1, 0, 0))

	for _, format := range []string{"text", "json"} {
		t.Run(format, func(t *testing.T) {
			infoFlags.format = format
			if err := displayCertInfo(certsInfoCmd, []string{certPath}); err != nil {
				t.Errorf("displayCertInfo: %v", err)
			}
		})
	}

	t.Run("missing file fails", func(t *testing.T) {
		infoFlags.format = "text"
		if err := displayCertInfo(certsInfoCmd, []string{"does-not-exist.pem"}); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
