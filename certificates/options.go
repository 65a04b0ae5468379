package certificates

import (
	"strings"

	"github.com/guardianproject/simple-c2pa-go/filedata"
)

// CertificateOptions is the immutable input of CreateCertificate.
type CertificateOptions struct {
	key             *filedata.FileData
	certificateType CertificateType
	parent          *Certificate
	emailAddress    string
	pgpFingerprint  string
}

// NewCertificateOptions creates the options for a single certificate.
// parent, emailAddress and pgpFingerprint are optional. The fingerprint is
// normalized with NormalizePGPFingerprint; it is kept for future use and not
// encoded into the certificate.
func NewCertificateOptions(
	key *filedata.FileData,
	certificateType CertificateType,
	parent *Certificate,
	emailAddress string,
	pgpFingerprint string,
) CertificateOptions {
	return CertificateOptions{
		key:             key,
		certificateType: certificateType,
		parent:          parent,
		emailAddress:    emailAddress,
		pgpFingerprint:  NormalizePGPFingerprint(pgpFingerprint),
	}
}

func (o CertificateOptions) Key() *filedata.FileData          { return o.key }
func (o CertificateOptions) CertificateType() CertificateType { return o.certificateType }
func (o CertificateOptions) Parent() *Certificate             { return o.parent }
func (o CertificateOptions) EmailAddress() string             { return o.emailAddress }
func (o CertificateOptions) PGPFingerprint() string           { return o.pgpFingerprint }

// NormalizePGPFingerprint removes regular and no-break spaces and upper-cases
// the hexadecimal digits, so "ba08 71e8" becomes "BA0871E8".
func NormalizePGPFingerprint(fingerprint string) string {
	r := strings.NewReplacer("\u00a0", "", "\u0a20", "", " ", "")
	return strings.ToUpper(r.Replace(fingerprint))
}
