package handler

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"

	"github.com/guardianproject/simple-c2pa-go/signing"
)

func curveFor(algorithm signing.Algorithm) elliptic.Curve {
	switch algorithm {
	case signing.ES256:
		return elliptic.P256()
	case signing.ES384:
		return elliptic.P384()
	case signing.ES512:
		return elliptic.P521()
	default:
		return nil
	}
}

func checkCurve(algorithm signing.Algorithm, pub *ecdsa.PublicKey) error {
	want := curveFor(algorithm)
	if want == nil {
		return fmt.Errorf("%w: %s with ecdsa key", ErrKeyTypeMismatch, algorithm)
	}
	if pub.Curve != want {
		return fmt.Errorf("%w: %s needs %s, key is %s",
			ErrKeyTypeMismatch, algorithm, want.Params().Name, pub.Curve.Params().Name)
	}
	return nil
}
