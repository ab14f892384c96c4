package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
)

// TLSConfig describes the client side of a TLS connection, e.g. to redis.
type TLSConfig struct {
	CACert     string `mapstructure:"ca_cert"`
	ClientCert string `mapstructure:"client_cert"`
	ClientKey  string `mapstructure:"client_key"`
	Insecure   bool   `mapstructure:"insecure"`
	MaxVersion string `mapstructure:"max_version"`
}

func BuildClientTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	var certificates []tls.Certificate
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		certPath, err := resolvePath(cfg.ClientCert)
		if err != nil {
			return nil, fmt.Errorf("resolve client certificate path: %w", err)
		}
		keyPath, err := resolvePath(cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("resolve client private key path: %w", err)
		}
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate/key: %w", err)
		}
		certificates = append(certificates, cert)
	}

	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		rootCAs = x509.NewCertPool()
	}

	if cfg.CACert != "" {
		caPath, err := resolvePath(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("resolve CA cert path: %w", err)
		}
		caBytes, err := os.ReadFile(caPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		if ok := rootCAs.AppendCertsFromPEM(caBytes); !ok {
			return nil, fmt.Errorf("failed to append CA certificate from %s", cfg.CACert)
		}
	}

	return &tls.Config{
		RootCAs:            rootCAs,
		Certificates:       certificates,
		InsecureSkipVerify: cfg.Insecure, // #nosec G402
		MinVersion:         tls.VersionTLS12,
		MaxVersion:         tlsVersion(cfg.MaxVersion),
	}, nil
}

// resolvePath makes relative paths absolute against the working directory.
func resolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	projectPath, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(projectPath, path), nil
}

func tlsVersion(version string) uint16 {
	switch version {
	case "TLS12":
		return tls.VersionTLS12
	default:
		return tls.VersionTLS13
	}
}
