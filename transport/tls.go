package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
)

// ErrNoTrustAnchor is returned when the CA material holds no usable certificate
var ErrNoTrustAnchor = errors.New("no certificates found in trust anchor")

// NewTLSConfig builds the client side of the mutually authenticated session.
// The server must present a certificate for serverName chained to ca, and
// the agent presents cert/key. All material is PEM.
func NewTLSConfig(serverName string, ca, cert, key []byte) (*tls.Config, error) {
	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(ca) {
		return nil, ErrNoTrustAnchor
	}

	pair, err := tls.X509KeyPair(cert, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	return &tls.Config{
		RootCAs:      roots,
		Certificates: []tls.Certificate{pair},
		ServerName:   serverName,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
