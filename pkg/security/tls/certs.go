package tls

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"
)

// LoadCertificateChain reads a PEM file and returns the DER-encoded
// certificate chain, in file order. It fails if the file cannot be read or
// contains no certificates.
func LoadCertificateChain(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var chain [][]byte
	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		chain = append(chain, block.Bytes)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return chain, nil
}

// LoadPrivateKey reads a PEM file and returns its single PKCS#8 private key.
// A file with zero keys or more than one key is a configuration error; the
// loader never silently picks one.
func LoadPrivateKey(path string) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var keys []crypto.PrivateKey
	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "PRIVATE KEY" {
			continue
		}
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key in %s: %w", path, err)
		}
		keys = append(keys, key)
	}
	if len(keys) != 1 {
		return nil, fmt.Errorf("expected a single private key in %s, got %d", path, len(keys))
	}
	return keys[0], nil
}

// LoadKeyPair loads the certificate chain and private key from the given
// paths and assembles them into a tls.Certificate.
func LoadKeyPair(certFile, keyFile string) (tls.Certificate, error) {
	chain, err := LoadCertificateChain(certFile)
	if err != nil {
		return tls.Certificate{}, err
	}
	key, err := LoadPrivateKey(keyFile)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{
		Certificate: chain,
		PrivateKey:  key,
	}, nil
}

// ValidateCertificate checks that a loaded certificate has a parseable leaf
// and is currently within its validity window.
func ValidateCertificate(cert *tls.Certificate) error {
	if cert == nil {
		return fmt.Errorf("certificate is nil")
	}
	if len(cert.Certificate) == 0 {
		return fmt.Errorf("certificate chain is empty")
	}

	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}
	return ValidateX509Certificate(x509Cert)
}

// ValidateX509Certificate validates an x509 certificate's validity window.
func ValidateX509Certificate(cert *x509.Certificate) error {
	now := time.Now()
	if now.Before(cert.NotBefore) {
		return fmt.Errorf("certificate is not yet valid (valid from %s)", cert.NotBefore.Format(time.RFC3339))
	}
	if now.After(cert.NotAfter) {
		return fmt.Errorf("certificate expired on %s", cert.NotAfter.Format(time.RFC3339))
	}
	return nil
}

// ValidateCertificateChain verifies the certificate against a pool of
// trusted roots.
func ValidateCertificateChain(cert *x509.Certificate, roots *x509.CertPool) error {
	opts := x509.VerifyOptions{
		Roots:     roots,
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	if _, err := cert.Verify(opts); err != nil {
		return fmt.Errorf("certificate chain verification failed: %w", err)
	}
	return nil
}

// CheckCertificateExpiration reports the number of days until expiration and
// a warning string when the certificate expires within 30 days.
func CheckCertificateExpiration(cert *x509.Certificate) (daysUntilExpiry int, warning string) {
	duration := time.Until(cert.NotAfter)
	daysUntilExpiry = int(duration.Hours() / 24)

	if daysUntilExpiry < 30 {
		warning = fmt.Sprintf("certificate expires in %d days (on %s)",
			daysUntilExpiry, cert.NotAfter.Format("2006-01-02"))
	}
	return daysUntilExpiry, warning
}
