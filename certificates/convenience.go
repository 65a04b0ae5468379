package certificates

import (
	"fmt"

	"github.com/guardianproject/simple-c2pa-go/c2paerr"
)

// CreateRootCertificate generates a key and a self-signed OfflineRoot
// certificate. Empty organization and zero validityDays select the defaults.
func CreateRootCertificate(organization string, validityDays uint32) (*Certificate, error) {
	return createWithFreshKey(CertificateType{
		Kind:         OfflineRoot,
		Organization: organization,
		ValidityDays: validityDays,
	}, nil)
}

// CreateIntermediateCertificate generates a key and an intermediate CA
// certificate issued by root. offline selects OfflineIntermediate over
// OnlineIntermediate.
func CreateIntermediateCertificate(root *Certificate, organization string, validityDays uint32, offline bool) (*Certificate, error) {
	kind := OnlineIntermediate
	if offline {
		kind = OfflineIntermediate
	}
	if root == nil {
		return nil, c2paerr.Failuref("an intermediate certificate requires a parent certificate")
	}
	return createWithFreshKey(CertificateType{
		Kind:         kind,
		Organization: organization,
		ValidityDays: validityDays,
	}, root)
}

// CreateContentCredentialsCertificate generates a key and a leaf certificate
// issued by root. A nil root yields a self-signed leaf.
func CreateContentCredentialsCertificate(root *Certificate, organization string, validityDays uint32) (*Certificate, error) {
	return createWithFreshKey(CertificateType{
		Kind:         ContentCredentials,
		Organization: organization,
		ValidityDays: validityDays,
	}, root)
}

// RequestSignedCertificate would obtain a certificate from an external CA
// instead of issuing one locally. It is not supported and always fails with
// an error wrapping c2paerr.ErrUnsupported.
func RequestSignedCertificate(options CertificateOptions) (*Certificate, error) {
	return nil, c2paerr.Failure(fmt.Errorf("request signed %s certificate: %w", options.certificateType, c2paerr.ErrUnsupported))
}

func createWithFreshKey(certificateType CertificateType, parent *Certificate) (*Certificate, error) {
	key, err := CreatePrivateKey()
	if err != nil {
		return nil, err
	}
	return CreateCertificate(NewCertificateOptions(key, certificateType, parent, "", ""))
}
