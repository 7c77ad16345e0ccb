package config

import (
	"errors"
	"strings"
)

// TLSConfig contains FTPS (explicit TLS, RFC 4217) configuration.
// When CertFile and KeyFile are both set, clients may upgrade the control
// channel with AUTH TLS and protect data channels with PROT P.
type TLSConfig struct {
	// CertFile is the path to a PEM-encoded certificate chain.
	CertFile string `env:"CERT_FILE"`

	// KeyFile is the path to the PEM-encoded private key for CertFile.
	KeyFile string `env:"KEY_FILE"`
}

// Sanitize normalises TLS configuration values.
func (c *TLSConfig) Sanitize() {
	c.CertFile = strings.TrimSpace(c.CertFile)
	c.KeyFile = strings.TrimSpace(c.KeyFile)
}

// Enabled returns true when FTPS upgrades should be offered.
func (c *TLSConfig) Enabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// Validate checks that the certificate and key are configured together.
func (c *TLSConfig) Validate() error {
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("FTPS_CERT_FILE and FTPS_KEY_FILE must be set together")
	}
	return nil
}
