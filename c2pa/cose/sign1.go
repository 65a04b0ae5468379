// Package cose creates and checks COSE_Sign1 structures (RFC 9052) with a
// detached payload, as used for C2PA claim signatures.
package cose

import (
	"context"
	"crypto/rand"
	"crypto/x509"
	"errors"
	"fmt"
	"io"

	gocose "github.com/veraison/go-cose"

	"github.com/guardianproject/simple-c2pa-go/signing"
	"github.com/guardianproject/simple-c2pa-go/signing/handler"
)

// ErrMalformed is returned for messages that are not a COSE_Sign1 structure.
var ErrMalformed = errors.New("cose: malformed COSE_Sign1 message")

// claimSigner lets go-cose drive a signing.Signer.
type claimSigner struct {
	ctx    context.Context
	signer signing.Signer
}

func (s claimSigner) Algorithm() gocose.Algorithm {
	return gocose.Algorithm(s.signer.Algorithm().COSE())
}

func (s claimSigner) Sign(_ io.Reader, content []byte) ([]byte, error) {
	return s.signer.Sign(s.ctx, content)
}

// claimVerifier checks signatures with the leaf of an x5chain.
type claimVerifier struct {
	algorithm signing.Algorithm
	leaf      *x509.Certificate
}

func (v claimVerifier) Algorithm() gocose.Algorithm {
	return gocose.Algorithm(v.algorithm.COSE())
}

func (v claimVerifier) Verify(content, signature []byte) error {
	return handler.Verify(v.algorithm, v.leaf, content, signature)
}

// Sign creates a tagged COSE_Sign1 message over payload. The payload is
// detached: it is covered by the signature but encoded as nil. The
// protected header carries the algorithm and the signer's certificate chain.
func Sign(ctx context.Context, signer signing.Signer, payload []byte) ([]byte, error) {
	chain := signer.CertificateChain()
	if len(chain) == 0 {
		return nil, errors.New("cose: signer has no certificate chain")
	}

	msg := gocose.NewSign1Message()
	msg.Headers.Protected.SetAlgorithm(gocose.Algorithm(signer.Algorithm().COSE()))
	msg.Headers.Protected[gocose.HeaderLabelX5Chain] = x5chain(chain)
	msg.Payload = payload
	if err := msg.Sign(rand.Reader, nil, claimSigner{ctx: ctx, signer: signer}); err != nil {
		return nil, fmt.Errorf("cose: sign with %s: %w", signer.Algorithm(), err)
	}
	msg.Payload = nil

	out, err := msg.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("cose: encode message: %w", err)
	}
	return out, nil
}

// Verified describes a checked COSE_Sign1 message.
type Verified struct {
	Algorithm signing.Algorithm
	// Chain holds the x5chain certificates, leaf first.
	Chain []*x509.Certificate
}

// Verify checks the signature of data over the detached payload with the
// leaf certificate embedded in the protected header. Trust in the chain is
// not evaluated.
func Verify(data, payload []byte) (*Verified, error) {
	var msg gocose.Sign1Message
	if err := msg.UnmarshalCBOR(data); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}

	coseAlg, err := msg.Headers.Protected.Algorithm()
	if err != nil {
		return nil, fmt.Errorf("%w: algorithm header: %w", ErrMalformed, err)
	}
	alg, err := signing.AlgorithmFromCOSE(int64(coseAlg))
	if err != nil {
		return nil, err
	}
	chain, err := parseX5Chain(msg.Headers.Protected[gocose.HeaderLabelX5Chain])
	if err != nil {
		return nil, err
	}

	msg.Payload = payload
	if err := msg.Verify(nil, claimVerifier{algorithm: alg, leaf: chain[0]}); err != nil {
		return nil, fmt.Errorf("cose: %w", err)
	}
	return &Verified{Algorithm: alg, Chain: chain}, nil
}

// x5chain is a single bstr for one certificate and an array otherwise.
func x5chain(chain [][]byte) any {
	if len(chain) == 1 {
		return chain[0]
	}
	ders := make([]any, 0, len(chain))
	for _, der := range chain {
		ders = append(ders, der)
	}
	return ders
}

func parseX5Chain(v any) ([]*x509.Certificate, error) {
	var ders [][]byte
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: missing x5chain", ErrMalformed)
	case []byte:
		ders = [][]byte{t}
	case []any:
		for _, e := range t {
			der, ok := e.([]byte)
			if !ok {
				return nil, fmt.Errorf("%w: x5chain entry is %T", ErrMalformed, e)
			}
			ders = append(ders, der)
		}
	default:
		return nil, fmt.Errorf("%w: x5chain is %T", ErrMalformed, v)
	}
	if len(ders) == 0 {
		return nil, fmt.Errorf("%w: empty x5chain", ErrMalformed)
	}

	chain := make([]*x509.Certificate, 0, len(ders))
	for _, der := range ders {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("cose: parse x5chain certificate: %w", err)
		}
		chain = append(chain, c)
	}
	return chain, nil
}
