package config

import "crypto/tls"

// TLSEnabled reports whether both a certificate and a key were configured.
func (c *Config) TLSEnabled() bool {
	return c.API.TLS_CERT_FILE != "" && c.API.TLS_KEY_FILE != ""
}

func (c *Config) LoadTLS() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(c.API.TLS_CERT_FILE, c.API.TLS_KEY_FILE)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
