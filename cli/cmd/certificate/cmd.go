// Package certificate implements "simple-c2pa certificate create".
package certificate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/guardianproject/simple-c2pa-go/blob/filesystem"
	"github.com/guardianproject/simple-c2pa-go/certificates"
	c2pacmd "github.com/guardianproject/simple-c2pa-go/cli/cmd/internal/cmd"
	v1 "github.com/guardianproject/simple-c2pa-go/cli/configuration/v1"
	c2pactx "github.com/guardianproject/simple-c2pa-go/cli/internal/context"
	"github.com/guardianproject/simple-c2pa-go/cli/internal/flags/file"
)

const (
	FlagName              = "name"
	FlagOnline            = "online"
	FlagOffline           = "offline"
	FlagParentCertificate = "parent-certificate"
	FlagParentKey         = "parent-key"
	FlagEmail             = "email"
	FlagPGPFingerprint    = "pgp-fingerprint"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificate {create}",
		Short: "Manage the certificates used for signing content credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		DisableAutoGenTag: true,
	}
	create := &cobra.Command{
		Use:   "create {root|intermediate|content-credentials}",
		Short: "Create a private key and certificate",
		Long: `Creates a fresh P-256 private key and a certificate for it.

The certificate is written as <name>.pem and the key as <name>.key into the
output directory. Certificates issued by a parent contain the whole chain,
leaf first, so the .pem file can be used for signing directly.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		DisableAutoGenTag: true,
	}
	create.AddCommand(newRoot(), newIntermediate(), newContentCredentials())
	cmd.AddCommand(create)
	return cmd
}

func newRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "root",
		Short: "Create a self-signed root CA",
		Args:  cobra.NoArgs,
		Example: `# offline root valid for the default 20 years
simple-c2pa certificate create root --organization "Guardian Project"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			online, err := cmd.Flags().GetBool(FlagOnline)
			if err != nil {
				return err
			}
			kind := certificates.OfflineRoot
			if online {
				kind = certificates.OnlineRoot
			}
			return create(cmd, kind, "root", false)
		},
		DisableAutoGenTag: true,
	}
	registerCommonFlags(cmd.Flags())
	cmd.Flags().Bool(FlagOnline, false, "create an online root instead of an offline root")
	return cmd
}

func newIntermediate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intermediate",
		Short: "Create an intermediate CA issued by a parent CA",
		Args:  cobra.NoArgs,
		Example: `simple-c2pa certificate create intermediate \
  --parent-certificate root.pem --parent-key root.key`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			offline, err := cmd.Flags().GetBool(FlagOffline)
			if err != nil {
				return err
			}
			kind := certificates.OnlineIntermediate
			if offline {
				kind = certificates.OfflineIntermediate
			}
			return create(cmd, kind, "intermediate", true)
		},
		DisableAutoGenTag: true,
	}
	registerCommonFlags(cmd.Flags())
	registerParentFlags(cmd.Flags())
	cmd.Flags().Bool(FlagOffline, false, "create an offline intermediate instead of an online intermediate")
	return cmd
}

func newContentCredentials() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content-credentials",
		Short: "Create an end-entity certificate for signing manifests",
		Args:  cobra.NoArgs,
		Long: `Creates an end-entity certificate for signing manifests.

Without a parent the certificate is self-signed.`,
		Example: `simple-c2pa certificate create content-credentials \
  --parent-certificate intermediate.pem --parent-key intermediate.key \
  --email jane@example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return create(cmd, certificates.ContentCredentials, "content-credentials", false)
		},
		DisableAutoGenTag: true,
	}
	registerCommonFlags(cmd.Flags())
	registerParentFlags(cmd.Flags())
	cmd.Flags().String(FlagEmail, "", "e-mail address added to the subject")
	cmd.Flags().String(FlagPGPFingerprint, "", "PGP fingerprint of the certificate owner")
	return cmd
}

func registerCommonFlags(flags *pflag.FlagSet) {
	flags.String(c2pacmd.OrganizationFlag, "", fmt.Sprintf("organization of the subject (default %q)", certificates.DefaultOrganization))
	flags.Uint32(c2pacmd.ValidityDaysFlag, 0, "validity period in days (default 20 years for CAs, 1 year otherwise)")
	flags.String(c2pacmd.OutputDirectoryFlag, ".", "directory the certificate and key are written to")
	flags.String(FlagName, "", "base name of the written files (defaults to the certificate variant)")
}

func registerParentFlags(flags *pflag.FlagSet) {
	file.Var(flags, FlagParentCertificate, "", "PEM certificate chain of the issuing CA")
	file.Var(flags, FlagParentKey, "", "PEM private key of the issuing CA")
}

func create(cmd *cobra.Command, kind certificates.Kind, defaultName string, parentRequired bool) error {
	profile := c2pactx.FromContext(cmd.Context()).Profile()
	certType, err := certificateType(cmd.Flags(), kind, profile.Certificate)
	if err != nil {
		return err
	}
	parent, err := loadParent(cmd.Flags())
	if err != nil {
		return err
	}
	if parent == nil && parentRequired {
		return fmt.Errorf("--%s and --%s are required for %s certificates", FlagParentCertificate, FlagParentKey, kind)
	}

	email, pgp := profile.Certificate.Email, profile.Certificate.PGPFingerprint
	if flag := cmd.Flags().Lookup(FlagEmail); flag != nil && flag.Changed {
		email = flag.Value.String()
	}
	if flag := cmd.Flags().Lookup(FlagPGPFingerprint); flag != nil && flag.Changed {
		pgp = flag.Value.String()
	}
	if kind != certificates.ContentCredentials {
		email, pgp = "", ""
	}

	key, err := certificates.CreatePrivateKey()
	if err != nil {
		return err
	}
	cert, err := certificates.CreateCertificate(certificates.NewCertificateOptions(key, certType, parent, email, pgp))
	if err != nil {
		return err
	}

	dir, err := cmd.Flags().GetString(c2pacmd.OutputDirectoryFlag)
	if err != nil {
		return err
	}
	name, err := cmd.Flags().GetString(FlagName)
	if err != nil {
		return err
	}
	if name == "" {
		name = defaultName
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	certPath := filepath.Join(dir, name+".pem")
	keyPath := filepath.Join(dir, name+".key")
	if err := filesystem.CopyBlobToOSPath(cert.CertificateData(), certPath); err != nil {
		return fmt.Errorf("writing certificate: %w", err)
	}
	if err := filesystem.CopyBlobToOSPath(cert.PrivateKeyData(), keyPath); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}

	slog.InfoContext(cmd.Context(), "certificate created",
		slog.String("type", certType.String()),
		slog.String("subject", certType.CommonName()),
		slog.String("certificate", certPath))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", certPath, keyPath)
	return err
}

// certificateType applies flag overrides on top of the profile defaults.
func certificateType(flags *pflag.FlagSet, kind certificates.Kind, defaults v1.Certificate) (certificates.CertificateType, error) {
	t := certificates.CertificateType{
		Kind:         kind,
		Organization: defaults.Organization,
		ValidityDays: defaults.ValidityDays,
	}
	if flags.Changed(c2pacmd.OrganizationFlag) {
		org, err := flags.GetString(c2pacmd.OrganizationFlag)
		if err != nil {
			return t, err
		}
		t.Organization = org
	}
	if flags.Changed(c2pacmd.ValidityDaysFlag) {
		days, err := flags.GetUint32(c2pacmd.ValidityDaysFlag)
		if err != nil {
			return t, err
		}
		t.ValidityDays = days
	}
	return t, nil
}

func loadParent(flags *pflag.FlagSet) (*certificates.Certificate, error) {
	certFlag, err := file.Get(flags, FlagParentCertificate)
	if err != nil {
		return nil, err
	}
	keyFlag, err := file.Get(flags, FlagParentKey)
	if err != nil {
		return nil, err
	}
	switch {
	case !certFlag.IsSet() && !keyFlag.IsSet():
		return nil, nil
	case certFlag.IsSet() != keyFlag.IsSet():
		return nil, fmt.Errorf("--%s and --%s must be given together", FlagParentCertificate, FlagParentKey)
	}
	return LoadPair(certFlag, keyFlag)
}

// LoadPair loads a certificate chain and its key from path flags.
func LoadPair(certFlag, keyFlag *file.Flag) (*certificates.Certificate, error) {
	certData, err := certFlag.FileData()
	if err != nil {
		return nil, err
	}
	keyData, err := keyFlag.FileData()
	if err != nil {
		return nil, err
	}
	return certificates.LoadCertificate(certData, keyData, nil)
}
