package main

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"openquery-hq/vanguard/pkg/cli"
)

var infoFlags struct {
	format string
}

var certsInfoCmd = &cobra.Command{
	Use:   "info [cert-file]",
	Short: "Display certificate details",
	Long: `Display detailed information about a TLS certificate.

This command extracts and displays comprehensive information from
a certificate file including:
  - Subject (CN, Organization, Country)
  - Issuer details
  - Validity period (NotBefore, NotAfter)
  - Subject Alternative Names (DNS, IP)
  - Signature and public key algorithms
  - Serial number

Output formats:
  - text (default): Human-readable formatted output
  - json: JSON-formatted output for scripting

Examples:
  # Display certificate info in text format
  vanguard certs info server.crt

  # Display in JSON format
  vanguard certs info --format json server.crt`,
	Args: cobra.ExactArgs(1),
	RunE: displayCertInfo,
}

func init() {
	certsCmd.AddCommand(certsInfoCmd)

	certsInfoCmd.Flags().StringVar(&infoFlags.format, "format", "text", "output format: text, json")
}

func displayCertInfo(cmd *cobra.Command, args []string) error {
	certFile := args[0]

	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return fmt.Errorf("failed to read certificate: %w", err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		return fmt.Errorf("failed to parse certificate PEM")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	if infoFlags.format == "json" {
		return printCertJSON(cert)
	}
	return printCertText(cert, certFile)
}

func printCertText(cert *x509.Certificate, file string) error {
	fmt.Printf("Certificate: %s\n\n", file)

	fmt.Println("Subject:")
	fmt.Printf("  Common Name (CN): %s\n", cert.Subject.CommonName)
	if len(cert.Subject.Organization) > 0 {
		fmt.Printf("  Organization (O): %s\n", cert.Subject.Organization[0])
	}
	if len(cert.Subject.Country) > 0 {
		fmt.Printf("  Country (C): %s\n", cert.Subject.Country[0])
	}

	fmt.Println("\nIssuer:")
	fmt.Printf("  Common Name (CN): %s\n", cert.Issuer.CommonName)
	if len(cert.Issuer.Organization) > 0 {
		fmt.Printf("  Organization (O): %s\n", cert.Issuer.Organization[0])
	}

	fmt.Println("\nValidity:")
	fmt.Printf("  Not Before: %s\n", cert.NotBefore.Format(time.RFC3339))
	fmt.Printf("  Not After: %s\n", cert.NotAfter.Format(time.RFC3339))
	fmt.Printf("  Duration: %d days\n", int(cert.NotAfter.Sub(cert.NotBefore).Hours()/24))

	now := time.Now()
	if now.After(cert.NotAfter) {
		fmt.Printf("  Status: ✗ EXPIRED on %s\n", cert.NotAfter.Format("2006-01-02"))
	} else {
		daysRemaining := int(time.Until(cert.NotAfter).Hours() / 24)
		fmt.Printf("  Status: ✓ Valid (%d days remaining)\n", daysRemaining)
		if daysRemaining < 30 {
			fmt.Printf("  Warning: ⚠  Certificate expires in %d days\n", daysRemaining)
		}
	}

	if len(cert.DNSNames) > 0 || len(cert.IPAddresses) > 0 {
		fmt.Println("\nSubject Alternative Names:")
		for _, san := range cert.DNSNames {
			fmt.Printf("  - DNS: %s\n", san)
		}
		for _, ip := range cert.IPAddresses {
			fmt.Printf("  - IP: %s\n", ip.String())
		}
	}

	fmt.Println("\nAlgorithms:")
	fmt.Printf("  Signature Algorithm: %s\n", cert.SignatureAlgorithm)
	fmt.Printf("  Public Key Algorithm: %s\n", cert.PublicKeyAlgorithm)

	fmt.Println("\nAdditional Information:")
	fmt.Printf("  Serial Number: %x\n", cert.SerialNumber)
	fmt.Printf("  Version: %d\n", cert.Version)
	fmt.Printf("  Is CA: %v\n", cert.IsCA)

	return nil
}

func printCertJSON(cert *x509.Certificate) error {
	ips := make([]string, 0, len(cert.IPAddresses))
	for _, ip := range cert.IPAddresses {
		ips = append(ips, ip.String())
	}

	data := map[string]interface{}{
		"subject": map[string]interface{}{
			"common_name":  cert.Subject.CommonName,
			"organization": cert.Subject.Organization,
			"country":      cert.Subject.Country,
		},
		"issuer": map[string]interface{}{
			"common_name":  cert.Issuer.CommonName,
			"organization": cert.Issuer.Organization,
		},
		"validity": map[string]interface{}{
			"not_before":     cert.NotBefore.Format(time.RFC3339),
			"not_after":      cert.NotAfter.Format(time.RFC3339),
			"duration_days":  int(cert.NotAfter.Sub(cert.NotBefore).Hours() / 24),
			"days_remaining": int(time.Until(cert.NotAfter).Hours() / 24),
			"is_expired":     time.Now().After(cert.NotAfter),
		},
		"sans": map[string]interface{}{
			"dns": cert.DNSNames,
			"ip":  ips,
		},
		"signature_algorithm":  cert.SignatureAlgorithm.String(),
		"public_key_algorithm": cert.PublicKeyAlgorithm.String(),
		"serial_number":        fmt.Sprintf("%x", cert.SerialNumber),
		"version":              cert.Version,
		"is_ca":                cert.IsCA,
	}

	return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, data)
}
