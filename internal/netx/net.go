// Package netx builds the HTTP transport used to reach the API, including
// optional public-key pinning.
package netx

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrPinMismatch = errors.New("certificate public key does not match any pin")

// SPKIFingerprint returns the base64 SHA-256 digest of cert's
// SubjectPublicKeyInfo, the format produced by
// `openssl x509 -pubkey | openssl pkey -pubin -outform der | openssl dgst -sha256 -binary | base64`.
func SPKIFingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// PinTLS returns a copy of cfg that, after normal chain verification, also
// requires some certificate in the presented chain to match one of pins.
// Pins may carry an optional "sha256/" prefix. An empty pin list returns a
// plain copy of cfg.
func PinTLS(cfg *tls.Config, pins []string) *tls.Config {
	var out *tls.Config
	if cfg == nil {
		out = &tls.Config{MinVersion: tls.VersionTLS12}
	} else {
		out = cfg.Clone()
	}

	allowed := make(map[string]struct{}, len(pins))
	for _, p := range pins {
		p = strings.TrimPrefix(strings.TrimSpace(p), "sha256/")
		if p != "" {
			allowed[p] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return out
	}

	out.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		for _, raw := range rawCerts {
			cert, err := x509.ParseCertificate(raw)
			if err != nil {
				return fmt.Errorf("parse peer certificate: %w", err)
			}
			if _, ok := allowed[SPKIFingerprint(cert)]; ok {
				return nil
			}
		}
		return ErrPinMismatch
	}
	return out
}

// NewTransport clones base (http.DefaultTransport when nil) and applies pins
// to its TLS configuration.
func NewTransport(base *http.Transport, pins []string) *http.Transport {
	if base == nil {
		base = http.DefaultTransport.(*http.Transport)
	}
	t := base.Clone()
	t.TLSClientConfig = PinTLS(t.TLSClientConfig, pins)
	t.TLSHandshakeTimeout = 10 * time.Second
	return t
}
