// Package tls loads the server certificate chain and private key from disk,
// builds the TLS server configuration for the REST listener, and optionally
// watches the certificate files for rotation.
//
// The package enforces two startup invariants: the key file must contain
// exactly one private key, and mutual TLS (client certificate validation) is
// rejected as unsupported.
package tls
