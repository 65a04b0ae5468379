package sign

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	v1 "github.com/guardianproject/simple-c2pa-go/cli/configuration/v1"
	"github.com/guardianproject/simple-c2pa-go/cli/internal/flags/enum"
	"github.com/guardianproject/simple-c2pa-go/contentcredentials"
)

// assertionsFromFlags layers the assertion flags over the profile.
func assertionsFromFlags(flags *pflag.FlagSet, profile v1.Assertions) (v1.Assertions, error) {
	overlay := v1.Profile{}
	a := &overlay.Assertions

	var err error
	if a.Created, err = flags.GetBool(FlagCreated); err != nil {
		return profile, err
	}
	if a.Placed, err = flags.GetBool(FlagPlaced); err != nil {
		return profile, err
	}
	if a.Website, err = flags.GetString(FlagWebsite); err != nil {
		return profile, err
	}
	training, err := enum.Get(flags, FlagAITraining)
	if err != nil {
		return profile, err
	}
	if training != AITrainingNone {
		a.AITraining = training
	}

	raw, err := flags.GetStringArray(FlagAssertion)
	if err != nil {
		return profile, err
	}
	for _, entry := range raw {
		label, value, ok := strings.Cut(entry, "=")
		if !ok || label == "" {
			return profile, fmt.Errorf("--%s %q: expected label=json", FlagAssertion, entry)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return profile, fmt.Errorf("--%s %q: %w", FlagAssertion, label, err)
		}
		if a.JSON == nil {
			a.JSON = map[string]any{}
		}
		a.JSON[label] = v
	}

	return v1.Merge(&v1.Profile{Assertions: profile}, &overlay).Assertions, nil
}

// addAssertions adds a to cc. JSON assertions are added in label order so
// that the manifest does not depend on map iteration.
func addAssertions(cc *contentcredentials.ContentCredentials, a v1.Assertions) error {
	if a.Created {
		if err := cc.AddCreatedAssertion(); err != nil {
			return err
		}
	}
	if a.Placed {
		if err := cc.AddPlacedAssertion(); err != nil {
			return err
		}
	}
	if a.Instagram != nil {
		if err := cc.AddInstagramAssertion(a.Instagram.ID, a.Instagram.DisplayName); err != nil {
			return err
		}
	}
	if a.PGP != nil {
		if err := cc.AddPGPAssertion(a.PGP.ID, a.PGP.DisplayName); err != nil {
			return err
		}
	}
	if a.Email != nil {
		if err := cc.AddEmailAssertion(a.Email.ID, a.Email.DisplayName); err != nil {
			return err
		}
	}
	if a.Website != "" {
		if err := cc.AddWebsiteAssertion(a.Website); err != nil {
			return err
		}
	}
	if a.Exif != nil {
		if err := cc.AddExifAssertion(*a.Exif); err != nil {
			return err
		}
	}
	switch a.AITraining {
	case v1.AITrainingRestricted:
		if err := cc.AddRestrictedAITrainingAssertions(); err != nil {
			return err
		}
	case v1.AITrainingPermissive:
		if err := cc.AddPermissiveAITrainingAssertions(); err != nil {
			return err
		}
	}
	for _, label := range slices.Sorted(maps.Keys(a.JSON)) {
		data, err := json.Marshal(a.JSON[label])
		if err != nil {
			return fmt.Errorf("encoding assertion %s: %w", label, err)
		}
		if err := cc.AddJSONAssertion(label, string(data)); err != nil {
			return err
		}
	}
	return nil
}
