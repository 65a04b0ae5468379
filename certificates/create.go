package certificates

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // RFC 5280 key identifier method 1
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/guardianproject/simple-c2pa-go/c2paerr"
	"github.com/guardianproject/simple-c2pa-go/filedata"
	"github.com/guardianproject/simple-c2pa-go/internal/pem"
)

const serialNumberLength = 20

var (
	oidEmailAddress    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
	oidExtensionKeyUse = asn1.ObjectIdentifier{2, 5, 29, 15}
)

// overridable in tests
var (
	now                  = time.Now
	randReader io.Reader = rand.Reader
)

// CreatePrivateKey generates a fresh P-256 key encoded as PKCS#8 PEM.
func CreatePrivateKey() (*filedata.FileData, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), randReader)
	if err != nil {
		return nil, c2paerr.Failure(fmt.Errorf("generate private key: %w", err))
	}
	data, err := pem.EncodePrivateKeyPEM(key)
	if err != nil {
		return nil, c2paerr.Failure(err)
	}
	return filedata.FromBytes(data, "private.key"), nil
}

// CreateCertificate issues a certificate for options.Key().
//
// Without a parent the certificate is self-signed. With a parent, the issuer
// is the parent's subject and the signature is made with the parent's
// private key. The returned Certificate carries the subject's own key.
func CreateCertificate(options CertificateOptions) (*Certificate, error) {
	if options.key == nil {
		return nil, c2paerr.Failure(c2paerr.ErrNoBytesOrPath)
	}

	serial, err := generateSerialNumber()
	if err != nil {
		return nil, err
	}

	keyPEM, err := options.key.GetBytes()
	if err != nil {
		return nil, err
	}
	subjectKey, err := pem.ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return nil, c2paerr.Failure(fmt.Errorf("parse subject private key: %w", err))
	}

	certType := options.certificateType
	isCA := certType.IsCA()

	ski, err := subjectKeyID(subjectKey.Public())
	if err != nil {
		return nil, c2paerr.Failure(err)
	}

	notBefore := now().UTC().Truncate(time.Second)
	notAfter := notBefore.Add(time.Duration(certType.ValidityPeriodDays()) * 24 * time.Hour)

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               createName(options),
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		BasicConstraintsValid: true,
		IsCA:                  isCA,
		SubjectKeyId:          ski,
	}

	if isCA {
		template.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	} else {
		ku, err := digitalSignatureKeyUsage()
		if err != nil {
			return nil, c2paerr.Failure(err)
		}
		template.ExtraExtensions = append(template.ExtraExtensions, ku)
		template.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageEmailProtection}
		// a self-signed leaf names itself as authority
		template.AuthorityKeyId = ski
	}

	issuer := template
	signingKey := subjectKey
	if options.parent != nil {
		if issuer, err = options.parent.X509(); err != nil {
			return nil, err
		}
		if isCA {
			// CA certificates carry no authority key identifier
			parent := *issuer
			parent.SubjectKeyId = nil
			issuer = &parent
		}
		if signingKey, err = options.parent.signer(); err != nil {
			return nil, err
		}
	}

	template.SignatureAlgorithm, err = signatureAlgorithm(signingKey)
	if err != nil {
		return nil, c2paerr.Failure(err)
	}

	der, err := x509.CreateCertificate(randReader, template, issuer, subjectKey.Public(), signingKey)
	if err != nil {
		return nil, c2paerr.Failure(fmt.Errorf("create %s certificate: %w", certType, err))
	}

	chain := pem.EncodeCertificatePEM(der)
	if options.parent != nil {
		parentChain, err := options.parent.GetCertificateBytes()
		if err != nil {
			return nil, err
		}
		chain = append(chain, parentChain...)
	}

	return &Certificate{
		certificate: filedata.FromBytes(chain, "certificate.pem"),
		privateKey:  filedata.FromBytes(keyPEM, "private.key"),
		parent:      options.parent,
	}, nil
}

// generateSerialNumber returns a random positive serial of at most 20 octets
// in DER. The top bit is cleared so the encoding needs no sign byte.
func generateSerialNumber() (*big.Int, error) {
	b := make([]byte, serialNumberLength)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, c2paerr.Failure(fmt.Errorf("generate serial number: %w", err))
	}
	b[0] &= 0x7f
	serial := new(big.Int).SetBytes(b)
	if serial.Sign() == 0 {
		serial.SetInt64(1)
	}
	return serial, nil
}

func createName(options CertificateOptions) pkix.Name {
	name := pkix.Name{
		CommonName:   options.certificateType.CommonName(),
		Organization: []string{options.certificateType.OrganizationName()},
	}
	if options.emailAddress != "" {
		name.ExtraNames = append(name.ExtraNames, pkix.AttributeTypeAndValue{
			Type: oidEmailAddress,
			Value: asn1.RawValue{
				Class: asn1.ClassUniversal,
				Tag:   asn1.TagIA5String,
				Bytes: []byte(options.emailAddress),
			},
		})
	}
	return name
}

// subjectKeyID implements RFC 5280 section 4.2.1.2 method 1: the SHA-1 of
// the subjectPublicKey bit string.
func subjectKeyID(pub crypto.PublicKey) ([]byte, error) {
	spki, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	var info struct {
		Algorithm        pkix.AlgorithmIdentifier
		SubjectPublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(spki, &info); err != nil {
		return nil, fmt.Errorf("unmarshal subject public key info: %w", err)
	}
	sum := sha1.Sum(info.SubjectPublicKey.Bytes) //nolint:gosec // see above
	return sum[:], nil
}

// digitalSignatureKeyUsage builds a non-critical keyUsage extension. The
// KeyUsage template field would always be marked critical.
func digitalSignatureKeyUsage() (pkix.Extension, error) {
	value, err := asn1.Marshal(asn1.BitString{Bytes: []byte{0x80}, BitLength: 1})
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("marshal key usage: %w", err)
	}
	return pkix.Extension{Id: oidExtensionKeyUse, Critical: false, Value: value}, nil
}

// signatureAlgorithm picks the SHA-512 variant matching the signing key.
func signatureAlgorithm(key crypto.Signer) (x509.SignatureAlgorithm, error) {
	switch key.(type) {
	case *ecdsa.PrivateKey:
		return x509.ECDSAWithSHA512, nil
	case *rsa.PrivateKey:
		return x509.SHA512WithRSA, nil
	case ed25519.PrivateKey:
		// Ed25519 hashes internally with SHA-512.
		return x509.PureEd25519, nil
	default:
		return x509.UnknownSignatureAlgorithm, fmt.Errorf("unsupported signing key type %T", key)
	}
}
