package contentcredentials

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
	"github.com/guardianproject/simple-c2pa-go/c2pa/manifest"
	"github.com/guardianproject/simple-c2pa-go/c2paerr"
	"github.com/guardianproject/simple-c2pa-go/certificates"
	"github.com/guardianproject/simple-c2pa-go/filedata"
	"github.com/guardianproject/simple-c2pa-go/signing"
	"github.com/guardianproject/simple-c2pa-go/signing/handler"
)

// LibraryName and LibraryVersion identify this library in claim generators.
const LibraryName = "simple-c2pa-go"

var LibraryVersion = "0.1.0"

// ApplicationInfo identifies the application that produces the claim.
type ApplicationInfo struct {
	Name    string
	Version string
	IconURI string
}

// SignerFactory constructs a signer for one algorithm from PEM material.
type SignerFactory func(certPEM, keyPEM []byte, algorithm signing.Algorithm) (signing.Signer, error)

// Option configures a ContentCredentials.
type Option func(*ContentCredentials)

// WithSignerFactory replaces handler.FromKeys, e.g. to sign with keys
// held outside the process.
func WithSignerFactory(f SignerFactory) Option {
	return func(c *ContentCredentials) {
		c.newSigner = f
	}
}

// ContentCredentials is the signing session for one media file. All
// methods are safe for concurrent use; they serialize on the manifest.
//
// A panic while the manifest is locked leaves the instance poisoned: every
// later call fails with c2paerr.ErrPoisoned.
type ContentCredentials struct {
	certificate *certificates.Certificate
	file        *filedata.FileData
	appInfo     ApplicationInfo
	newSigner   SignerFactory

	mu       sync.Mutex
	manifest *manifest.Manifest
	poisoned bool
}

// New creates the session and records file as the parent ingredient of the
// manifest. appInfo may be nil.
func New(certificate *certificates.Certificate, file *filedata.FileData, appInfo *ApplicationInfo, opts ...Option) (*ContentCredentials, error) {
	if certificate == nil {
		return nil, c2paerr.Failuref("content credentials need a certificate")
	}
	if file == nil {
		return nil, c2paerr.Failure(c2paerr.ErrNoBytesOrPath)
	}

	c := &ContentCredentials{
		certificate: certificate,
		file:        file,
		newSigner:   handler.FromKeys,
	}
	if appInfo != nil {
		c.appInfo = *appInfo
	}
	for _, opt := range opts {
		opt(c)
	}

	data, err := file.GetBytes()
	if err != nil {
		return nil, err
	}
	generator, info := claimGenerator(c.appInfo)
	c.manifest = manifest.New(generator, info...)
	if err := c.manifest.SetParent(assertions.NewParentIngredient(file.FileName(), data)); err != nil {
		return nil, c2paerr.Failure(err)
	}
	return c, nil
}

// ClaimGenerator returns the claim generator string of the manifest.
func (c *ContentCredentials) ClaimGenerator() string {
	return c.manifest.ClaimGenerator()
}

// claimGenerator renders "<app>/<version> simple-c2pa-go/<version>" and
// the matching generator info entries.
func claimGenerator(app ApplicationInfo) (string, []manifest.GeneratorInfo) {
	lib := manifest.GeneratorInfo{Name: LibraryName, Version: normalizeVersion(LibraryVersion)}
	if app.Name == "" {
		return lib.Name + "/" + lib.Version, []manifest.GeneratorInfo{lib}
	}
	name := strings.ReplaceAll(strings.TrimSpace(app.Name), " ", "_")
	appInfo := manifest.GeneratorInfo{Name: app.Name, Version: normalizeVersion(app.Version), Icon: app.IconURI}
	generator := name
	if appInfo.Version != "" {
		generator += "/" + appInfo.Version
	}
	return generator + " " + lib.Name + "/" + lib.Version, []manifest.GeneratorInfo{appInfo, lib}
}

// normalizeVersion renders semantic versions canonically ("v1.2" becomes
// "1.2.0") and keeps anything else as given.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return v
	}
	return parsed.String()
}

// locked runs fn with the manifest lock held.
func (c *ContentCredentials) locked(fn func(m *manifest.Manifest) error) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.poisoned {
		return c2paerr.Failure(c2paerr.ErrPoisoned)
	}
	defer func() {
		if r := recover(); r != nil {
			c.poisoned = true
			panic(r)
		}
	}()
	if c.manifest.Finalized() {
		return c2paerr.Failure(c2paerr.ErrFinalized)
	}
	if err := fn(c.manifest); err != nil {
		if errors.Is(err, manifest.ErrFinalized) {
			return c2paerr.FailureWithCause(c2paerr.ErrFinalized.Error(), errors.Join(c2paerr.ErrFinalized, err))
		}
		return c2paerr.Failure(err)
	}
	return nil
}

func (c *ContentCredentials) String() string {
	return fmt.Sprintf("content credentials for %s", c.file)
}
