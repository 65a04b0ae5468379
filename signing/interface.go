// Package signing defines the boundary between manifest assembly and the
// cryptographic signer that seals a claim.
package signing

import (
	"context"
	"fmt"
	"strings"

	gocose "github.com/veraison/go-cose"
)

// Algorithm names a signature algorithm usable for claim signatures.
type Algorithm string

const (
	ES256   Algorithm = "es256"
	ES384   Algorithm = "es384"
	ES512   Algorithm = "es512"
	PS256   Algorithm = "ps256"
	PS384   Algorithm = "ps384"
	PS512   Algorithm = "ps512"
	Ed25519 Algorithm = "ed25519"
)

// SupportedAlgorithms is the order in which algorithms are tried when
// signing with a certificate of unknown key type.
var SupportedAlgorithms = []Algorithm{ES256, ES384, ES512, PS256, PS384, PS512, Ed25519}

// COSE algorithm identifiers from the IANA registry.
const (
	coseES256 = int64(gocose.AlgorithmES256)
	coseEdDSA = int64(gocose.AlgorithmEdDSA)
	coseES384 = int64(gocose.AlgorithmES384)
	coseES512 = int64(gocose.AlgorithmES512)
	cosePS256 = int64(gocose.AlgorithmPS256)
	cosePS384 = int64(gocose.AlgorithmPS384)
	cosePS512 = int64(gocose.AlgorithmPS512)
)

// COSE returns the COSE "alg" header value, or 0 for unknown algorithms.
func (a Algorithm) COSE() int64 {
	switch a {
	case ES256:
		return coseES256
	case ES384:
		return coseES384
	case ES512:
		return coseES512
	case PS256:
		return cosePS256
	case PS384:
		return cosePS384
	case PS512:
		return cosePS512
	case Ed25519:
		return coseEdDSA
	default:
		return 0
	}
}

func (a Algorithm) String() string {
	return string(a)
}

// AlgorithmFromCOSE maps a COSE "alg" header value back to an Algorithm.
func AlgorithmFromCOSE(id int64) (Algorithm, error) {
	for _, a := range SupportedAlgorithms {
		if a.COSE() == id {
			return a, nil
		}
	}
	return "", fmt.Errorf("unsupported COSE algorithm %d", id)
}

// ParseAlgorithm accepts algorithm names case-insensitively, e.g. "ES256" or "ed25519".
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(s))
	for _, supported := range SupportedAlgorithms {
		if a == supported {
			return a, nil
		}
	}
	return "", fmt.Errorf("unsupported signing algorithm %q", s)
}

// Signer produces raw claim signatures.
//
// Sign receives the COSE Sig_structure and must return the signature in the
// COSE encoding of the algorithm: fixed-width r||s for ECDSA, raw for
// RSASSA-PSS and Ed25519.
type Signer interface {
	Algorithm() Algorithm
	// Sign signs the message data.
	Sign(ctx context.Context, data []byte) ([]byte, error)
	// CertificateChain returns the DER certificates, leaf first.
	CertificateChain() [][]byte
}
