package certificates

import (
	"crypto"
	"crypto/x509"
	"fmt"

	"github.com/guardianproject/simple-c2pa-go/c2paerr"
	"github.com/guardianproject/simple-c2pa-go/filedata"
	"github.com/guardianproject/simple-c2pa-go/internal/pem"
)

// Certificate is an issued certificate together with its own private key.
//
// The certificate bytes hold the PEM chain leaf first, followed by the
// certificate bytes of the parent (which in turn hold the parent's chain).
// A Certificate is immutable and safe for concurrent use.
type Certificate struct {
	certificate *filedata.FileData
	privateKey  *filedata.FileData
	parent      *Certificate
}

// LoadCertificate wraps existing PEM material, for example certificates that
// were created earlier and stored on disk. The certificate chain and the key
// are parsed once to fail early on malformed input.
func LoadCertificate(certificate, privateKey *filedata.FileData, parent *Certificate) (*Certificate, error) {
	c := &Certificate{certificate: certificate, privateKey: privateKey, parent: parent}
	if _, err := c.X509(); err != nil {
		return nil, err
	}
	if _, err := c.signer(); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCertificateBytes returns the PEM encoded certificate chain.
func (c *Certificate) GetCertificateBytes() ([]byte, error) {
	return c.certificate.GetBytes()
}

// GetPrivateKeyBytes returns the PEM encoded PKCS#8 private key of this certificate.
func (c *Certificate) GetPrivateKeyBytes() ([]byte, error) {
	return c.privateKey.GetBytes()
}

// CertificateData returns the resource handle of the certificate chain.
func (c *Certificate) CertificateData() *filedata.FileData {
	return c.certificate
}

// PrivateKeyData returns the resource handle of the private key.
func (c *Certificate) PrivateKeyData() *filedata.FileData {
	return c.privateKey
}

// Parent returns the issuing certificate or nil for self-signed certificates.
func (c *Certificate) Parent() *Certificate {
	return c.parent
}

// Chain walks from this certificate up to the root.
func (c *Certificate) Chain() []*Certificate {
	var chain []*Certificate
	for cur := c; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}

// X509 parses the first certificate of the chain.
func (c *Certificate) X509() (*x509.Certificate, error) {
	data, err := c.GetCertificateBytes()
	if err != nil {
		return nil, err
	}
	chain, err := pem.ParseCertificateChain(data)
	if err != nil {
		return nil, c2paerr.Failure(fmt.Errorf("parse certificate: %w", err))
	}
	return chain[0], nil
}

func (c *Certificate) signer() (crypto.Signer, error) {
	data, err := c.GetPrivateKeyBytes()
	if err != nil {
		return nil, err
	}
	key, err := pem.ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, c2paerr.Failure(fmt.Errorf("parse private key: %w", err))
	}
	return key, nil
}
