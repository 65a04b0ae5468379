package v1

import (
	"fmt"
	"maps"

	"sigs.k8s.io/yaml"

	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
)

// AI training presets accepted in Assertions.AITraining.
const (
	AITrainingRestricted = "restricted"
	AITrainingPermissive = "permissive"
)

// Profile is the decoded profile file.
type Profile struct {
	Application Application `json:"application,omitempty"`
	Certificate Certificate `json:"certificate,omitempty"`
	Assertions  Assertions  `json:"assertions,omitempty"`
}

type Application struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	IconURI string `json:"iconURI,omitempty"`
}

// Certificate configures certificates created on the fly.
type Certificate struct {
	Organization   string `json:"organization,omitempty"`
	ValidityDays   uint32 `json:"validityDays,omitempty"`
	Email          string `json:"email,omitempty"`
	PGPFingerprint string `json:"pgpFingerprint,omitempty"`
}

// Identity is an author statement.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
}

// Assertions lists the assertions added to every signed file.
type Assertions struct {
	Created    bool      `json:"created,omitempty"`
	Placed     bool      `json:"placed,omitempty"`
	Instagram  *Identity `json:"instagram,omitempty"`
	PGP        *Identity `json:"pgp,omitempty"`
	Email      *Identity `json:"email,omitempty"`
	Website    string    `json:"website,omitempty"`
	AITraining string    `json:"aiTraining,omitempty" jsonschema:"enum=restricted,enum=permissive"`
	// Exif is added as the stds.exif assertion.
	Exif *assertions.ExifData `json:"exif,omitempty"`
	// JSON maps labels to arbitrary JSON values.
	JSON map[string]any `json:"json,omitempty"`
}

// Decode parses a YAML or JSON profile. Unknown fields are rejected.
func Decode(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the enumerated fields.
func (p *Profile) Validate() error {
	switch p.Assertions.AITraining {
	case "", AITrainingRestricted, AITrainingPermissive:
	default:
		return fmt.Errorf("unknown aiTraining preset %q, expected %q or %q",
			p.Assertions.AITraining, AITrainingRestricted, AITrainingPermissive)
	}
	return nil
}

// Merge overlays the profiles in order. Later profiles win per field, and
// JSON assertions are merged per label.
func Merge(profiles ...*Profile) *Profile {
	merged := &Profile{}
	for _, p := range profiles {
		if p == nil {
			continue
		}
		mergeString(&merged.Application.Name, p.Application.Name)
		mergeString(&merged.Application.Version, p.Application.Version)
		mergeString(&merged.Application.IconURI, p.Application.IconURI)

		mergeString(&merged.Certificate.Organization, p.Certificate.Organization)
		mergeString(&merged.Certificate.Email, p.Certificate.Email)
		mergeString(&merged.Certificate.PGPFingerprint, p.Certificate.PGPFingerprint)
		if p.Certificate.ValidityDays != 0 {
			merged.Certificate.ValidityDays = p.Certificate.ValidityDays
		}

		a, m := p.Assertions, &merged.Assertions
		m.Created = m.Created || a.Created
		m.Placed = m.Placed || a.Placed
		mergeString(&m.Website, a.Website)
		mergeString(&m.AITraining, a.AITraining)
		if a.Instagram != nil {
			m.Instagram = a.Instagram
		}
		if a.PGP != nil {
			m.PGP = a.PGP
		}
		if a.Email != nil {
			m.Email = a.Email
		}
		if a.Exif != nil {
			m.Exif = a.Exif
		}
		if len(a.JSON) > 0 {
			if m.JSON == nil {
				m.JSON = map[string]any{}
			}
			maps.Copy(m.JSON, a.JSON)
		}
	}
	return merged
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
