package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Reloader watches the certificate and key files and swaps the serving
// certificate when they change on disk. This allows certificate renewal
// (e.g. Let's Encrypt) without a server restart.
type Reloader struct {
	certFile string
	keyFile  string
	watcher  *fsnotify.Watcher

	mu   sync.RWMutex
	cert *tls.Certificate
}

// NewReloader creates a Reloader for the given certificate and key paths.
func NewReloader(certFile, keyFile string) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Reloader{
		certFile: certFile,
		keyFile:  keyFile,
		watcher:  watcher,
	}, nil
}

// Start loads the initial certificate, begins watching both files, and
// reloads in the background until the context is canceled.
//
// The parent directories are watched rather than the files themselves:
// renames during atomic rotation (write temp file, rename over) would
// otherwise drop the watch.
func (r *Reloader) Start(ctx context.Context) error {
	if err := r.reload(); err != nil {
		return err
	}

	dirs := map[string]struct{}{
		filepath.Dir(r.certFile): {},
		filepath.Dir(r.keyFile):  {},
	}
	for dir := range dirs {
		if err := r.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	go r.watchLoop(ctx)
	return nil
}

func (r *Reloader) watchLoop(ctx context.Context) {
	defer r.watcher.Close()

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !r.relevant(event) {
				continue
			}
			if err := r.reload(); err != nil {
				slog.Error("failed to reload certificate",
					"error", err,
					"cert_file", r.certFile,
				)
				continue
			}
			slog.Info("certificate reloaded", "cert_file", r.certFile)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("certificate watcher error", "error", err)

		case <-ctx.Done():
			return
		}
	}
}

// relevant reports whether a filesystem event touches the certificate or key
// file with an operation that can change content.
func (r *Reloader) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == filepath.Clean(r.certFile) || name == filepath.Clean(r.keyFile)
}

// reload loads both files and swaps the certificate atomically. A key pair
// that fails to load or validate leaves the previous certificate serving.
func (r *Reloader) reload() error {
	cert, err := LoadKeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}
	if err := ValidateCertificate(&cert); err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()
	return nil
}

// GetCertificate returns the currently loaded certificate.
func (r *Reloader) GetCertificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// GetCertificateFunc adapts the reloader to tls.Config.GetCertificate.
func (r *Reloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		cert := r.GetCertificate()
		if cert == nil {
			return nil, fmt.Errorf("no certificate loaded")
		}
		return cert, nil
	}
}
