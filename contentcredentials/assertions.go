package contentcredentials

import (
	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
	"github.com/guardianproject/simple-c2pa-go/c2pa/manifest"
	"github.com/guardianproject/simple-c2pa-go/certificates"
)

type (
	ExifData                = assertions.ExifData
	AIDataMiningUsage       = assertions.AIDataMiningUsage
	CustomAITrainingOptions = assertions.CustomAITrainingOptions
)

func (c *ContentCredentials) addTyped(a assertions.Typed) error {
	return c.locked(func(m *manifest.Manifest) error {
		return m.AddAssertion(a)
	})
}

// AddCreatedAssertion records that the asset was created by the application.
func (c *ContentCredentials) AddCreatedAssertion() error {
	return c.addTyped(assertions.NewActions(assertions.ActionCreated, c.ClaimGenerator()))
}

// AddPlacedAssertion records that the asset was placed (imported).
func (c *ContentCredentials) AddPlacedAssertion() error {
	return c.addTyped(assertions.NewActions(assertions.ActionPlaced, c.ClaimGenerator()))
}

// AddInstagramAssertion names the author by Instagram username.
func (c *ContentCredentials) AddInstagramAssertion(username, displayName string) error {
	return c.addTyped(assertions.NewAuthorWork(displayName, username, assertions.InstagramURI))
}

// AddPGPAssertion names the author by PGP fingerprint. The fingerprint is
// normalized like certificate options do.
func (c *ContentCredentials) AddPGPAssertion(fingerprint, displayName string) error {
	return c.addTyped(assertions.NewAuthorWork(displayName, certificates.NormalizePGPFingerprint(fingerprint), assertions.PGPURI))
}

// AddEmailAssertion names the author by e-mail address.
func (c *ContentCredentials) AddEmailAssertion(email, displayName string) error {
	return c.addTyped(assertions.NewAuthorWork(displayName, email, "mailto:"+email))
}

// AddWebsiteAssertion links the asset to a website.
func (c *ContentCredentials) AddWebsiteAssertion(url string) error {
	return c.addTyped(assertions.NewWebsiteWork(url))
}

// AddExifAssertion records the present fields of exif.
func (c *ContentCredentials) AddExifAssertion(exif ExifData) error {
	return c.addTyped(assertions.NewExif(exif))
}

// AddJSONAssertion stores json verbatim under label.
func (c *ContentCredentials) AddJSONAssertion(label, json string) error {
	return c.locked(func(m *manifest.Manifest) error {
		return m.AddLabeledAssertion(label, json)
	})
}

// AddRestrictedAITrainingAssertions disallows all four AI and mining usages.
func (c *ContentCredentials) AddRestrictedAITrainingAssertions() error {
	return c.AddCustomAITrainingAssertions(assertions.UniformAITrainingOptions(assertions.NotAllowed))
}

// AddPermissiveAITrainingAssertions allows all four AI and mining usages.
func (c *ContentCredentials) AddPermissiveAITrainingAssertions() error {
	return c.AddCustomAITrainingAssertions(assertions.UniformAITrainingOptions(assertions.Allowed))
}

// AddCustomAITrainingAssertions sets each usage from options.
func (c *ContentCredentials) AddCustomAITrainingAssertions(options CustomAITrainingOptions) error {
	return c.locked(func(m *manifest.Manifest) error {
		encoded, err := options.Assertions()
		if err != nil {
			return err
		}
		for _, a := range encoded {
			if err := m.AddEncoded(a); err != nil {
				return err
			}
		}
		return nil
	})
}
