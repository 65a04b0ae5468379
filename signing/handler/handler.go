// Package handler builds signing.Signer implementations from PEM encoded
// certificate chains and private keys. It supports ECDSA on P-256, P-384 and
// P-521, RSASSA-PSS and Ed25519, and verifies signatures made by them.
// Signatures use the COSE encodings of go-cose.
package handler

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"fmt"
	"log/slog"

	gocose "github.com/veraison/go-cose"

	"github.com/guardianproject/simple-c2pa-go/internal/pem"
	"github.com/guardianproject/simple-c2pa-go/signing"
)

// minimum modulus size accepted for PS* algorithms
const minRSABits = 2048

// id-kp-documentSigning, RFC 9336
var oidExtKeyUsageDocumentSigning = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 36}

// Common errors for callers to test.
var (
	ErrInvalidAlgorithm   = errors.New("invalid algorithm")
	ErrKeyTypeMismatch    = errors.New("private key does not fit the algorithm")
	ErrKeyMismatch        = errors.New("private key does not match the certificate")
	ErrMissingCertificate = errors.New("certificate chain is empty")
	ErrCertificateProfile = errors.New("certificate cannot be used for signing claims")
	ErrInvalidSignature   = errors.New("invalid signature")
)

// signer implements signing.Signer for a single key and algorithm.
type signer struct {
	algorithm signing.Algorithm
	cose      gocose.Signer
	chain     [][]byte
}

var _ signing.Signer = (*signer)(nil)

// FromKeys creates a signer for algorithm from a PEM certificate chain
// (leaf first) and a PEM private key. It fails when the key type does not
// fit the algorithm, when the key does not belong to the leaf or when the
// leaf is not usable as a claim signing certificate.
func FromKeys(certPEM, keyPEM []byte, algorithm signing.Algorithm) (signing.Signer, error) {
	if algorithm.COSE() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, algorithm)
	}

	chain, err := pem.ParseCertificateChain(certPEM)
	if err != nil {
		return nil, fmt.Errorf("parse certificate chain: %w", err)
	}
	if len(chain) == 0 {
		return nil, ErrMissingCertificate
	}
	leaf := chain[0]

	key, err := pem.ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	if err := checkKeyType(algorithm, key.Public()); err != nil {
		return nil, err
	}
	if err := checkKeyMatchesCertificate(key, leaf); err != nil {
		return nil, err
	}
	if err := checkLeafProfile(leaf); err != nil {
		return nil, err
	}

	cs, err := gocose.NewSigner(gocose.Algorithm(algorithm.COSE()), key)
	if err != nil {
		return nil, errors.Join(ErrKeyTypeMismatch, err)
	}

	der := make([][]byte, 0, len(chain))
	for _, c := range chain {
		der = append(der, c.Raw)
	}

	return &signer{algorithm: algorithm, cose: cs, chain: der}, nil
}

func (s *signer) Algorithm() signing.Algorithm {
	return s.algorithm
}

func (s *signer) CertificateChain() [][]byte {
	chain := make([][]byte, len(s.chain))
	copy(chain, s.chain)
	return chain
}

// Sign signs data with the configured algorithm.
func (s *signer) Sign(ctx context.Context, data []byte) ([]byte, error) {
	slog.DebugContext(ctx, "signing claim", slog.String("algorithm", s.algorithm.String()), slog.Int("size", len(data)))

	sig, err := s.cose.Sign(rand.Reader, data)
	if err != nil {
		return nil, fmt.Errorf("%s sign: %w", s.algorithm, err)
	}
	return sig, nil
}

// Verify checks sig over data with the public key of leaf using algorithm.
func Verify(algorithm signing.Algorithm, leaf *x509.Certificate, data, sig []byte) error {
	if leaf == nil {
		return ErrMissingCertificate
	}
	if algorithm.COSE() == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidAlgorithm, algorithm)
	}
	if err := checkKeyType(algorithm, leaf.PublicKey); err != nil {
		return err
	}
	v, err := gocose.NewVerifier(gocose.Algorithm(algorithm.COSE()), leaf.PublicKey)
	if err != nil {
		return errors.Join(ErrKeyTypeMismatch, err)
	}
	if err := v.Verify(data, sig); err != nil {
		return errors.Join(ErrInvalidSignature, err)
	}
	return nil
}

func checkKeyType(algorithm signing.Algorithm, pub crypto.PublicKey) error {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		return checkCurve(algorithm, k)
	case *rsa.PublicKey:
		if !isPSS(algorithm) {
			return fmt.Errorf("%w: %s with rsa key", ErrKeyTypeMismatch, algorithm)
		}
		if bits := k.N.BitLen(); bits < minRSABits {
			return fmt.Errorf("%w: rsa key of %d bits is shorter than %d", ErrKeyTypeMismatch, bits, minRSABits)
		}
		return nil
	case ed25519.PublicKey:
		if algorithm != signing.Ed25519 {
			return fmt.Errorf("%w: %s with ed25519 key", ErrKeyTypeMismatch, algorithm)
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrKeyTypeMismatch, pub)
	}
}

func checkKeyMatchesCertificate(key crypto.Signer, leaf *x509.Certificate) error {
	pub, ok := key.Public().(interface{ Equal(crypto.PublicKey) bool })
	if !ok || !pub.Equal(leaf.PublicKey) {
		return ErrKeyMismatch
	}
	return nil
}

// checkLeafProfile rejects CA certificates and certificates that are not
// meant for signatures.
func checkLeafProfile(leaf *x509.Certificate) error {
	if leaf.IsCA {
		return fmt.Errorf("%w: %q is a CA certificate", ErrCertificateProfile, leaf.Subject.CommonName)
	}
	if leaf.KeyUsage != 0 && leaf.KeyUsage&x509.KeyUsageDigitalSignature == 0 {
		return fmt.Errorf("%w: key usage lacks digitalSignature", ErrCertificateProfile)
	}
	if len(leaf.ExtKeyUsage) == 0 && len(leaf.UnknownExtKeyUsage) == 0 {
		return nil
	}
	for _, eku := range leaf.ExtKeyUsage {
		switch eku {
		case x509.ExtKeyUsageAny, x509.ExtKeyUsageEmailProtection, x509.ExtKeyUsageTimeStamping:
			return nil
		}
	}
	for _, oid := range leaf.UnknownExtKeyUsage {
		if oid.Equal(oidExtKeyUsageDocumentSigning) {
			return nil
		}
	}
	return fmt.Errorf("%w: no acceptable extended key usage", ErrCertificateProfile)
}

func isPSS(algorithm signing.Algorithm) bool {
	switch algorithm {
	case signing.PS256, signing.PS384, signing.PS512:
		return true
	default:
		return false
	}
}
