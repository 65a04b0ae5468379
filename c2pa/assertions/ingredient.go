package assertions

import (
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
)

// LabelIngredient is the label of ingredient assertions.
const LabelIngredient = "c2pa.ingredient"

// RelationshipParentOf marks the asset a manifest was created from.
const RelationshipParentOf = "parentOf"

// Ingredient references an asset that went into the manifest's asset.
type Ingredient struct {
	Title        string `cbor:"dc:title" json:"dc:title"`
	Format       string `cbor:"dc:format" json:"dc:format"`
	InstanceID   string `cbor:"instanceID" json:"instanceID"`
	Relationship string `cbor:"relationship" json:"relationship"`
	// Digest is the go-digest of the ingredient bytes, e.g. "sha256:…".
	Digest string `cbor:"digest" json:"digest"`
}

// NewParentIngredient describes data as the parent of a new manifest.
// The instance ID is derived from the content digest, so the same bytes
// always yield the same ingredient.
func NewParentIngredient(title string, data []byte) *Ingredient {
	dig := digest.FromBytes(data)
	return &Ingredient{
		Title:        title,
		Format:       mimetype.Detect(data).String(),
		InstanceID:   "xmp:iid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(dig.String())).String(),
		Relationship: RelationshipParentOf,
		Digest:       dig.String(),
	}
}

func (*Ingredient) Label() string { return LabelIngredient }

func (i *Ingredient) Assertion() (*Assertion, error) {
	return EncodeCBOR(LabelIngredient, i)
}
