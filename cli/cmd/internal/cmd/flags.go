package cmd

const (
	// OrganizationFlag overrides the organization of created certificates.
	OrganizationFlag = "organization"
	// ValidityDaysFlag overrides the validity period of created certificates.
	ValidityDaysFlag = "validity-days"
	// CertificateFlag names a PEM certificate chain, leaf first.
	CertificateFlag = "certificate"
	// KeyFlag names the PEM private key belonging to CertificateFlag.
	KeyFlag = "key"
	// OutputDirectoryFlag is where commands write their results.
	OutputDirectoryFlag = "output-dir"
)
