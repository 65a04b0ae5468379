// Package pem contains the PEM and X.509 helpers shared by certificate
// creation and signer construction.
package pem

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// PEM block types used across helpers.
const (
	CertificatePEMBlockType = "CERTIFICATE"
	pemPKCS8PrivateKey      = "PRIVATE KEY"
	pemPKCS1PrivateKey      = "RSA PRIVATE KEY"
	pemSEC1PrivateKey       = "EC PRIVATE KEY"
)

// ErrNoPrivateKey indicates that no supported private key block was found.
var ErrNoPrivateKey = errors.New("pem: no supported private key found")

// ParsePrivateKeyPEM scans concatenated PEM data and returns the first
// private key found. PKCS#8 ("PRIVATE KEY"), PKCS#1 ("RSA PRIVATE KEY") and
// SEC 1 ("EC PRIVATE KEY") containers are supported. The key is returned as a
// crypto.Signer backed by *ecdsa.PrivateKey, *rsa.PrivateKey or
// ed25519.PrivateKey.
func ParsePrivateKeyPEM(pemBytes []byte) (crypto.Signer, error) {
	var errs []error
	for len(pemBytes) > 0 {
		block, rest := pem.Decode(pemBytes)
		if block == nil {
			break
		}
		switch block.Type {
		case pemPKCS8PrivateKey:
			anyKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				errs = append(errs, err)
				break
			}
			switch k := anyKey.(type) {
			case *ecdsa.PrivateKey:
				return k, nil
			case *rsa.PrivateKey:
				return k, nil
			case ed25519.PrivateKey:
				return k, nil
			default:
				errs = append(errs, fmt.Errorf("unsupported private key type %T", anyKey))
			}
		case pemPKCS1PrivateKey:
			k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err == nil {
				return k, nil
			}
			errs = append(errs, err)
		case pemSEC1PrivateKey:
			k, err := x509.ParseECPrivateKey(block.Bytes)
			if err == nil {
				return k, nil
			}
			errs = append(errs, err)
		}
		pemBytes = rest
	}
	return nil, errors.Join(append([]error{ErrNoPrivateKey}, errs...)...)
}

// EncodePrivateKeyPEM marshals key as a PKCS#8 "PRIVATE KEY" PEM block.
func EncodePrivateKeyPEM(key crypto.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("marshal pkcs8 private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemPKCS8PrivateKey, Bytes: der}), nil
}

// EncodeCertificatePEM wraps DER certificate bytes into a CERTIFICATE PEM block.
func EncodeCertificatePEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: CertificatePEMBlockType, Bytes: der})
}

// ParseCertificateChain parses one or more consecutive CERTIFICATE PEM blocks
// and returns them in order. If a non-CERTIFICATE block is encountered before
// any certificate is parsed, or if no certificates are found, an error is
// returned.
func ParseCertificateChain(data []byte) ([]*x509.Certificate, error) {
	var chain []*x509.Certificate

	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != CertificatePEMBlockType {
			if len(chain) == 0 {
				return nil, fmt.Errorf("unexpected pem block type for certificate: %q", block.Type)
			}
			break
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		chain = append(chain, cert)
		data = rest
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("invalid certificate format (expected %q PEM block)", CertificatePEMBlockType)
	}
	return chain, nil
}

// CertificateChainToPem encodes a slice of X.509 certificates into consecutive
// CERTIFICATE PEM blocks. Order is preserved.
func CertificateChainToPem(certs []*x509.Certificate) []byte {
	var out []byte
	for _, c := range certs {
		out = append(out, EncodeCertificatePEM(c.Raw)...)
	}
	return out
}
