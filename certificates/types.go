package certificates

import (
	"fmt"
)

// DefaultOrganization is used for the O and CN attributes when no organization is set.
const DefaultOrganization = "ProofMode"

// Default validity periods in days.
const (
	DefaultCAValidityDays                 uint32 = 365 * 20
	DefaultContentCredentialsValidityDays uint32 = 365
)

// Kind is the closed set of certificate variants.
type Kind int

const (
	OnlineRoot Kind = iota
	OnlineIntermediate
	OfflineRoot
	OfflineIntermediate
	ContentCredentials
)

func (k Kind) String() string {
	switch k {
	case OnlineRoot:
		return "OnlineRoot"
	case OnlineIntermediate:
		return "OnlineIntermediate"
	case OfflineRoot:
		return "OfflineRoot"
	case OfflineIntermediate:
		return "OfflineIntermediate"
	case ContentCredentials:
		return "ContentCredentials"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// commonNameSuffix is appended to the organization to form the subject CN.
func (k Kind) commonNameSuffix() string {
	switch k {
	case OnlineRoot:
		return "Root CA"
	case OnlineIntermediate:
		return "Intermediate CA"
	case OfflineRoot:
		return "Offline Root CA"
	case OfflineIntermediate:
		return "Offline Intermediate CA"
	default:
		return "Content Credentials"
	}
}

// CertificateType selects the variant of a certificate together with its
// optional overrides. The zero values of Organization and ValidityDays mean
// "use the default".
type CertificateType struct {
	Kind         Kind
	Organization string
	ValidityDays uint32
}

// IsCA is true for every variant except ContentCredentials.
func (t CertificateType) IsCA() bool {
	return t.Kind != ContentCredentials
}

// OrganizationName returns the organization override or DefaultOrganization.
func (t CertificateType) OrganizationName() string {
	if t.Organization != "" {
		return t.Organization
	}
	return DefaultOrganization
}

// CommonName returns "<organization> <suffix>", e.g. "ProofMode Offline Root CA".
func (t CertificateType) CommonName() string {
	return t.OrganizationName() + " " + t.Kind.commonNameSuffix()
}

// ValidityPeriodDays returns the override if set, otherwise 20 years for CA
// variants and 1 year for ContentCredentials.
func (t CertificateType) ValidityPeriodDays() uint32 {
	if t.ValidityDays != 0 {
		return t.ValidityDays
	}
	if t.IsCA() {
		return DefaultCAValidityDays
	}
	return DefaultContentCredentialsValidityDays
}

func (t CertificateType) String() string {
	return t.Kind.String()
}

// ParseKind maps a variant name (case-sensitive, as returned by Kind.String) to a Kind.
func ParseKind(s string) (Kind, error) {
	for k := OnlineRoot; k <= ContentCredentials; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown certificate kind %q", s)
}
